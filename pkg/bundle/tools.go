package bundle

import "sort"

// Family selects which extra variables a tool's launch augments.
type Family int

const (
	// FamilyPlain tools only get the base and Python search paths.
	FamilyPlain Family = iota
	// FamilyDesigner tools also get PYQTDESIGNERPATH and diagnostics.
	FamilyDesigner
	// FamilyQML tools also get QML2_IMPORT_PATH and diagnostics.
	FamilyQML
)

func (f Family) String() string {
	switch f {
	case FamilyDesigner:
		return "designer"
	case FamilyQML:
		return "qml"
	default:
		return "plain"
	}
}

// Tool describes one bundled executable.
type Tool struct {
	// Name is the command name exposed by the CLI.
	Name string
	// Executable is the file name under Qt/bin without platform extension.
	Executable string
	Family     Family
	Short      string
}

var tools = []Tool{
	{Name: "assistant", Executable: "assistant", Short: "Qt Assistant documentation browser"},
	{Name: "canbusutil", Executable: "canbusutil", Short: "CAN bus command line utility"},
	{Name: "designer", Executable: "designer", Family: FamilyDesigner, Short: "Qt Designer with Python widget plugins"},
	{Name: "dumpcpp", Executable: "dumpcpp", Short: "ActiveQt C++ wrapper generator"},
	{Name: "dumpdoc", Executable: "dumpdoc", Short: "ActiveQt documentation generator"},
	{Name: "lconvert", Executable: "lconvert", Short: "Translation file converter"},
	{Name: "linguist", Executable: "linguist", Short: "Qt Linguist translation editor"},
	{Name: "lprodump", Executable: "lprodump", Short: "Project file dumper for lupdate"},
	{Name: "lrelease", Executable: "lrelease", Short: "Compile .ts translations to .qm"},
	{Name: "lupdate", Executable: "lupdate", Short: "Extract translatable strings"},
	{Name: "pixeltool", Executable: "pixeltool", Short: "Screen magnifier"},
	{Name: "qdbus", Executable: "qdbus", Short: "D-Bus command line client"},
	{Name: "qdbuscpp2xml", Executable: "qdbuscpp2xml", Short: "D-Bus interface XML generator"},
	{Name: "qdbusviewer", Executable: "qdbusviewer", Short: "D-Bus viewer"},
	{Name: "qdbusxml2cpp", Executable: "qdbusxml2cpp", Short: "D-Bus adaptor and proxy generator"},
	{Name: "qdistancefieldgenerator", Executable: "qdistancefieldgenerator", Short: "Distance field font cache generator"},
	{Name: "qdoc", Executable: "qdoc", Short: "Qt documentation generator"},
	{Name: "qgltf", Executable: "qgltf", Short: "Qt 3D glTF converter"},
	{Name: "qhelpgenerator", Executable: "qhelpgenerator", Short: "Qt help file generator"},
	{Name: "qlalr", Executable: "qlalr", Short: "LALR parser generator"},
	{Name: "qml", Executable: "qml", Short: "QML runtime"},
	{Name: "qmlcachegen", Executable: "qmlcachegen", Short: "QML cache compiler"},
	{Name: "qmleasing", Executable: "qmleasing", Short: "Easing curve editor"},
	{Name: "qmlformat", Executable: "qmlformat", Short: "QML formatter"},
	{Name: "qmlimportscanner", Executable: "qmlimportscanner", Short: "QML import scanner"},
	{Name: "qmllint", Executable: "qmllint", Short: "QML linter"},
	{Name: "qmlmin", Executable: "qmlmin", Short: "QML minifier"},
	{Name: "qmlplugindump", Executable: "qmlplugindump", Short: "QML plugin type dumper"},
	{Name: "qmlpreview", Executable: "qmlpreview", Short: "QML live preview"},
	{Name: "qmlprofiler", Executable: "qmlprofiler", Short: "QML profiler"},
	{Name: "qmlscene", Executable: "qmlscene", Family: FamilyQML, Short: "QML scene viewer with bundled imports"},
	{Name: "qmltestrunner", Executable: "qmltestrunner", Family: FamilyQML, Short: "QML test runner with bundled imports"},
	{Name: "qmltyperegistrar", Executable: "qmltyperegistrar", Short: "QML type registrar"},
	{Name: "qscxmlc", Executable: "qscxmlc", Short: "SCXML compiler"},
	{Name: "qtattributionsscanner", Executable: "qtattributionsscanner", Short: "Third-party attribution scanner"},
	{Name: "qtdiag", Executable: "qtdiag", Short: "Qt diagnostics"},
	{Name: "qtpaths", Executable: "qtpaths", Short: "Qt path query tool"},
	{Name: "qtplugininfo", Executable: "qtplugininfo", Short: "Qt plugin metadata dumper"},
	{Name: "qvkgen", Executable: "qvkgen", Short: "Vulkan wrapper generator"},
	{Name: "repc", Executable: "repc", Short: "Qt Remote Objects compiler"},
	{Name: "testcon", Executable: "testcon", Short: "ActiveX test container"},
	{Name: "uic", Executable: "uic", Short: "User interface compiler"},
	{Name: "xmlpatterns", Executable: "xmlpatterns", Short: "XQuery processor"},
	{Name: "xmlpatternsvalidator", Executable: "xmlpatternsvalidator", Short: "XML schema validator"},
}

var toolsByName = func() map[string]Tool {
	m := make(map[string]Tool, len(tools))
	for _, t := range tools {
		m[t.Name] = t
	}
	return m
}()

// Tools returns the bundled tools sorted by name.
func Tools() []Tool {
	out := make([]Tool, len(tools))
	copy(out, tools)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup returns the tool registered under name.
func Lookup(name string) (Tool, bool) {
	t, ok := toolsByName[name]
	return t, ok
}
