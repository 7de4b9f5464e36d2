package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/seitarof/gen-uwp-dts/internal/notation"
)

func page(title, helpID, main string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html><head>
<title>%[1]s (Windows)</title>
<meta name="Microsoft.Help.Id" content="%[2]s">
<meta name="Microsoft.Help.Category" content="DevLang:csharp">
<meta name="Microsoft.Help.Category" content="DevLang:javascript">
</head><body>
<div class="title">%[1]s</div>
<div id="mainSection">%[3]s</div>
</body></html>`, html.EscapeString(title), helpID, main)
}

func parsePage(t *testing.T, src string) *Result {
	t.Helper()
	result, err := New(DefaultOptions()).Parse(strings.NewReader(src))
	require.NoError(t, err)
	return result
}

func singleEntry(t *testing.T, result *Result) Entry {
	t.Helper()
	require.False(t, result.Skipped(), "skipped: %s", result.Skip)
	require.Len(t, result.Entries, 1)
	return result.Entries[0]
}

func TestParse_Class(t *testing.T) {
	src := page("SmartCardTrigger class", "T:Windows.ApplicationModel.Background.SmartCardTrigger", `
<p>Represents an event that causes a background task to run.</p>
<h2>Syntax</h2>
<CODESNIPPET language="JavaScript">var smartCardTrigger = new Windows.ApplicationModel.Background.SmartCardTrigger(triggerType);</CODESNIPPET>
<CODESNIPPET language="C#">public sealed class SmartCardTrigger : IBackgroundTrigger, ISmartCardTrigger</CODESNIPPET>
<h2>Members</h2>`)

	result := parsePage(t, src)
	entry := singleEntry(t, result)

	assert.Equal(t, DocClass, result.Kind)
	assert.Equal(t, "Windows.ApplicationModel.Background.SmartCardTrigger", entry.ID)
	class, ok := entry.Notation.(*notation.Class)
	require.True(t, ok)
	assert.Equal(t, "Represents an event that causes a background task to run.", class.Description)
	assert.Equal(t, []string{"IBackgroundTrigger", "ISmartCardTrigger"}, class.Interfaces)
	assert.Equal(t, notation.KindClass, class.Kind())
}

func TestParse_Attribute(t *testing.T) {
	src := page("WebHostHiddenAttribute attribute", "T:Windows.Foundation.Metadata.WebHostHiddenAttribute", `
<p>Identifies the type as one whose functionality is not projected.</p>`)

	entry := singleEntry(t, parsePage(t, src))

	assert.Equal(t, notation.KindAttribute, entry.Notation.Kind())
}

func TestParse_Enumeration(t *testing.T) {
	src := page("PosPrinterCartridgeSensors enumeration", "T:Windows.Devices.PointOfService.PosPrinterCartridgeSensors", `
<p>Describes the cartridge sensors.</p>
<h2>Members</h2>
<p>The enumeration has these members.</p>
<table>
<tr><th>Member</th><th>Value</th><th>Description</th></tr>
<tr><td><strong>None</strong><strong>none</strong></td><td>0</td><td><p>No sensors.</p></td></tr>
<tr><td><strong>Removed</strong><strong>removed</strong></td><td>1</td><td><p>Cartridge removed.</p></td></tr>
<tr><td><strong>Native</strong></td><td>2</td><td><p>Not projected.</p></td></tr>
</table>`)

	result := parsePage(t, src)
	require.Len(t, result.Entries, 3)

	enum, ok := result.Entries[0].Notation.(*notation.Enumeration)
	require.True(t, ok)
	assert.Equal(t, []string{"none", "removed"}, enum.Members)

	member := result.Entries[2]
	assert.Equal(t, "Windows.Devices.PointOfService.PosPrinterCartridgeSensors.removed", member.ID)
	prop, ok := member.Notation.(*notation.Property)
	require.True(t, ok)
	assert.Equal(t, notation.Universal("Number"), prop.Type)
	assert.Equal(t, "Cartridge removed.", prop.Description)
}

func TestParse_EnumerationWithoutTable(t *testing.T) {
	src := page("Broken enumeration", "T:Windows.Foo.Broken", `
<p>Broken.</p>
<h2>Members</h2>
<p>No table follows.</p>
<p>Really.</p>`)

	_, err := New(DefaultOptions()).Parse(strings.NewReader(src))

	assert.ErrorIs(t, err, ErrStructure)
}

func TestParse_Property(t *testing.T) {
	src := page("SmartCardTrigger.TriggerType property", "P:Windows.ApplicationModel.Background.SmartCardTrigger.TriggerType", `
<p>Gets the trigger type.</p>
<h2>Syntax</h2>
<h2>Property value</h2>
<p>Type: <a href="ms-xhelp:///?Id=T%3aWindows.Devices.SmartCards.SmartCardTriggerType">SmartCardTriggerType</a></p>`)

	entry := singleEntry(t, parsePage(t, src))

	prop, ok := entry.Notation.(*notation.Property)
	require.True(t, ok)
	assert.Equal(t, notation.Universal("Windows.Devices.SmartCards.SmartCardTriggerType"), prop.Type)
}

func TestParse_PropertyIncompatibleIsSkipped(t *testing.T) {
	src := page("Foo.Handle property", "P:Windows.Foo.Handle", `
<p>Native handle.</p>
<h2>Property value</h2>
<p>Type: <strong>HANDLE</strong> [C++]</p>`)

	result := parsePage(t, src)

	assert.Equal(t, SkipIncompatible, result.Skip)
	assert.Empty(t, result.Entries)
}

func TestParse_Delegate(t *testing.T) {
	src := page("TypedEventHandler<TSender, TResult> delegate", "T:Windows.Foundation.TypedEventHandler`2", `
<p>Represents a method that handles general events.</p>
<h2>Parameters</h2>
<dl>
<dt>sender</dt><dd><p>Type: <strong>TSender</strong></p><p>The event source.</p></dd>
<dt>args</dt><dd><p>Type: <strong>TResult</strong></p><p>The event data.</p></dd>
</dl>`)

	entry := singleEntry(t, parsePage(t, src))

	assert.Equal(t, "Windows.Foundation.TypedEventHandler", entry.ID)
	delegate, ok := entry.Notation.(*notation.Delegate)
	require.True(t, ok)
	assert.Equal(t, []string{"TSender", "TResult"}, delegate.TypeParameters)
	require.Len(t, delegate.Signature.Parameters, 2)
	assert.Equal(t, "args", delegate.Signature.Parameters[1].Key)
	assert.Equal(t, notation.Universal("TResult"), delegate.Signature.Parameters[1].Type)
	assert.Equal(t, "The event data.", delegate.Signature.Parameters[1].Description)
}

func TestParse_DelegateWithoutParametersFails(t *testing.T) {
	src := page("EmptyHandler delegate", "T:Windows.Foo.EmptyHandler", `<p>Nothing.</p>`)

	_, err := New(DefaultOptions()).Parse(strings.NewReader(src))

	assert.ErrorIs(t, err, ErrStructure)
}

func TestParse_Constructor(t *testing.T) {
	src := page("Uri constructor", "M:Windows.Foundation.Uri.#ctor(System.String)", `
<p>Initializes a new Uri object.</p>
<h2>Syntax</h2>
<CODESNIPPET language="JavaScript">var uri = new Windows.Foundation.Uri(uri);</CODESNIPPET>
<h2>Parameters</h2>
<dl><dt>uri</dt><dd><p>Type: <strong>String</strong></p><p>The address.</p></dd></dl>`)

	entry := singleEntry(t, parsePage(t, src))

	assert.Equal(t, "Windows.Foundation.Uri.constructor", entry.ID)
	fn, ok := entry.Notation.(*notation.Function)
	require.True(t, ok)
	require.Len(t, fn.Signatures, 1)
	assert.Equal(t, notation.ReturnInstance, fn.Signatures[0].Return.Kind)
	assert.Equal(t, "Initializes a new Uri object.", fn.Signatures[0].Description)
	assert.Len(t, fn.Signatures[0].Parameters, 1)
}

func TestParse_ConstructorWithoutMarkerFails(t *testing.T) {
	src := page("Uri constructor", "M:Windows.Foundation.Uri.Create", `<p>Broken.</p>`)

	_, err := New(DefaultOptions()).Parse(strings.NewReader(src))

	assert.ErrorIs(t, err, ErrStructure)
}

func TestParse_Method(t *testing.T) {
	src := page("FileIO.ReadTextAsync method", "M:Windows.Storage.FileIO.ReadTextAsync(Windows.Storage.IStorageFile)", `
<p>Reads the contents of the specified file.</p>
<h2>Syntax</h2>
<CODESNIPPET language="JavaScript">Windows.Storage.FileIO.readTextAsync(file).done(...);</CODESNIPPET>
<CODESNIPPET language="C#">public static IAsyncOperation&lt;string&gt; ReadTextAsync(IStorageFile file)</CODESNIPPET>
<h2>Parameters</h2>
<dl><dt>file</dt><dd><p>Type: <a href="ms-xhelp:///?Id=T%3aWindows.Storage.IStorageFile">IStorageFile</a></p><p>The file to read.</p></dd></dl>
<h2>Return value</h2>
<p>Type: <a href="ms-xhelp:///?Id=T%3aWindows.Foundation.IAsyncOperation%601">IAsyncOperation</a>&lt;<strong>String</strong>&gt;</p>
<p>When this method completes, it returns the file contents.</p>`)

	entry := singleEntry(t, parsePage(t, src))

	assert.Equal(t, "Windows.Storage.FileIO.ReadTextAsync", entry.ID)
	fn := entry.Notation.(*notation.Function)
	sig := fn.Signatures[0]
	assert.Equal(t, "file", sig.Parameters[0].Key)
	assert.Equal(t, notation.Universal("Windows.Storage.IStorageFile"), sig.Parameters[0].Type)
	assert.Equal(t, notation.ReturnType, sig.Return.Kind)
	assert.Equal(t, "When this method completes, it returns the file contents.", sig.Return.Description)
	code, ok := notation.SnippetFor(sig.CodeSnippets, "C#")
	require.True(t, ok)
	assert.Contains(t, code, "IAsyncOperation<string>")
}

func TestParse_MethodReturnWithoutType(t *testing.T) {
	src := page("PhoneCallHistoryStore.GetEntryAsync method", "M:Windows.ApplicationModel.Calls.PhoneCallHistoryStore.GetEntryAsync(System.String)", `
<p>Gets an entry.</p>
<h2>Syntax</h2>
<CODESNIPPET language="JavaScript">phoneCallHistoryStore.getEntryAsync(callHistoryEntryId).done(...);</CODESNIPPET>
<h2>Parameters</h2>
<p>This method has no parameters.</p>
<h2>Return value</h2>
<p>An asynchronous operation.</p>
<p>Returns the entry.</p>`)

	entry := singleEntry(t, parsePage(t, src))

	sig := entry.Notation.(*notation.Function).Signatures[0]
	assert.Empty(t, sig.Parameters)
	assert.Equal(t, notation.Universal(notation.UnknownType), sig.Return.Type)
}

func TestParse_MethodWithoutScriptSnippetIsSkipped(t *testing.T) {
	src := page("Foo.Native method", "M:Windows.Foo.Native", `
<p>Native only.</p>
<h2>Syntax</h2>
<CODESNIPPET language="C++">void Native();</CODESNIPPET>`)

	result := parsePage(t, src)

	assert.Equal(t, SkipIncompatible, result.Skip)
}

const eventSnippet = `function onPhotoCaptured(eventArgs) { }
variablePhotoSequenceCapture.addEventListener("photocaptured", onPhotoCaptured);
variablePhotoSequenceCapture.removeEventListener("photocaptured", onPhotoCaptured);
variablePhotoSequenceCapture.onphotocaptured = onPhotoCaptured;`

func TestParse_Event(t *testing.T) {
	src := page("VariablePhotoSequenceCapture.PhotoCaptured event", "E:Windows.Media.Capture.Core.VariablePhotoSequenceCapture.PhotoCaptured", `
<p>Occurs when a photo has been captured.</p>
<h2>Syntax</h2>
<CODESNIPPET language="JavaScript">`+eventSnippet+`</CODESNIPPET>
<h2>Event information</h2>
<table><tr><td>Delegate</td><td><a href="ms-xhelp:///?Id=T%3aWindows.Foundation.TypedEventHandler%602">TypedEventHandler</a></td></tr></table>`)

	entry := singleEntry(t, parsePage(t, src))

	assert.Equal(t, "Windows.Media.Capture.Core.VariablePhotoSequenceCapture.onPhotoCaptured", entry.ID)
	event, ok := entry.Notation.(*notation.Event)
	require.True(t, ok)
	assert.Equal(t, "photocaptured", event.EventName)
	assert.Equal(t, notation.Universal("Windows.Foundation.TypedEventHandler"), event.Delegate)
}

func TestParse_EventWithoutAssignmentSyntaxFails(t *testing.T) {
	src := page("Foo.Changed event", "E:Windows.Foo.Changed", `
<p>Changed.</p>
<h2>Syntax</h2>
<CODESNIPPET language="JavaScript">foo.addEventListener("changed", onChanged);</CODESNIPPET>
<h2>Event information</h2>
<table><tr><td>Delegate</td><td><strong>EventHandler</strong></td></tr></table>`)

	_, err := New(DefaultOptions()).Parse(strings.NewReader(src))

	assert.ErrorIs(t, err, ErrStructure)
}

func TestParse_Structure(t *testing.T) {
	src := page("Rect structure", "T:Windows.Foundation.Rect", `
<p>Contains number values that represent a rectangle.</p>
<h2>Members</h2>
<p>The Rect structure has these fields.</p>
<table>
<tr><th>Field</th><th>Type</th><th>Description</th></tr>
<tr><td><strong>X</strong> | <strong>x</strong></td><td><p><strong>Number</strong> [JavaScript]</p></td><td>The left edge.</td></tr>
<tr><td><strong>Width</strong> | <strong>width</strong></td><td><p><strong>Number</strong> [JavaScript]</p></td><td>The   width.</td></tr>
</table>`)

	entry := singleEntry(t, parsePage(t, src))

	st, ok := entry.Notation.(*notation.Structure)
	require.True(t, ok)
	require.Len(t, st.Members, 2)
	assert.Equal(t, "width", st.Members[1].Key)
	js, ok := st.Members[1].Type.For("JavaScript")
	require.True(t, ok)
	assert.Equal(t, "Number", js)
	assert.Equal(t, "The width.", st.Members[1].Description)
}

func TestParse_StructureEmpty(t *testing.T) {
	src := page("Token structure", "T:Windows.Foo.Token", `
<p>An opaque token.</p>
<h2>Members</h2>
<p>This structure has no members.</p>
<h2>Requirements</h2>`)

	entry := singleEntry(t, parsePage(t, src))

	assert.Empty(t, entry.Notation.(*notation.Structure).Members)
}

func TestParse_StructureWrongNameCountFails(t *testing.T) {
	src := page("Rect structure", "T:Windows.Foundation.Rect", `
<p>Rect.</p>
<h2>Members</h2>
<p>Fields.</p>
<table>
<tr><th>Field</th><th>Type</th><th>Description</th></tr>
<tr><td><strong>X</strong></td><td><p><strong>Number</strong></p></td><td>Left.</td></tr>
</table>`)

	_, err := New(DefaultOptions()).Parse(strings.NewReader(src))

	assert.ErrorIs(t, err, ErrStructure)
}

func TestParse_Namespace(t *testing.T) {
	src := page("Windows.Foundation namespace", "N:Windows.Foundation", `
<p>Enables fundamental functionality.</p>
<h2>Members</h2>
<h3>Structures</h3>
<table>
<tr><th>Structure</th><th>Description</th></tr>
<tr><td><a href="ms-xhelp:///?Id=T%3aWindows.Foundation.Rect">Rect</a></td><td>A rectangle.</td></tr>
</table>
<h3>Delegates</h3>
<table>
<tr><th>Delegate</th><th>Description</th></tr>
<tr><td><a href="ms-xhelp:///?Id=T%3aWindows.Foundation.TypedEventHandler%602">TypedEventHandler</a></td><td>Handler.</td></tr>
</table>
<h3>Interfaces</h3>
<table>
<tr><th>Interface</th><th>Description</th></tr>
<tr><td><a href="ms-xhelp:///?Id=T%3aWindows.Foundation.IClosable">IClosable</a></td><td>Closable.</td></tr>
</table>`)

	entry := singleEntry(t, parsePage(t, src))

	ns, ok := entry.Notation.(*notation.Namespace)
	require.True(t, ok)
	assert.Equal(t, []string{"Windows.Foundation.Rect"}, ns.Members.Structures)
	assert.Equal(t, []string{"Windows.Foundation.TypedEventHandler"}, ns.Members.Delegates)
	assert.Equal(t, []string{"Windows.Foundation.IClosable"}, ns.Members.Interfaces)
}

func TestParse_NamespaceCombinedTable(t *testing.T) {
	src := page("Windows.Foo namespace", "N:Windows.Foo", `
<p>Foo.</p>
<h2>In this section</h2>
<table>
<tr><th>Topic</th><th>Description</th></tr>
<tr><td><a href="ms-xhelp:///?Id=T%3aWindows.Foo.Bar">Bar structure</a></td><td>Bar.</td></tr>
<tr><td><a href="ms-xhelp:///?Id=T%3aWindows.Foo.IBaz">IBaz interface</a></td><td>Baz.</td></tr>
<tr><td><a href="ms-xhelp:///?Id=T%3aWindows.Foo.Qux">Qux class</a></td><td>Qux.</td></tr>
</table>`)

	entry := singleEntry(t, parsePage(t, src))

	ns := entry.Notation.(*notation.Namespace)
	assert.Equal(t, []string{"Windows.Foo.Bar"}, ns.Members.Structures)
	assert.Equal(t, []string{"Windows.Foo.IBaz"}, ns.Members.Interfaces)
	assert.Empty(t, ns.Members.Delegates)
}

func TestParse_Interface(t *testing.T) {
	src := page("IVectorView<T> interface", "T:Windows.Foundation.Collections.IVectorView`1", `
<p>Represents an immutable view into a vector.</p>
<h2>Syntax</h2>
<CODESNIPPET language="C#">public interface IVectorView&lt;T&gt; : IIterable&lt;T&gt;</CODESNIPPET>
<h2>Members</h2>
<h3>Methods</h3>
<table>
<tr><th>Method</th><th>Description</th></tr>
<tr><td><a href="ms-xhelp:///?Id=M%3aWindows.Foundation.Collections.IVectorView%601.GetAt(System.UInt32)">GetAt</a></td><td>Item.</td></tr>
<tr><td><a href="ms-xhelp:///?Id=M%3aWindows.Foundation.Collections.IVectorView%601.IndexOf(%600%2cSystem.UInt32%40)">IndexOf</a></td><td>Index.</td></tr>
</table>
<h3>Properties</h3>
<table>
<tr><th>Property</th><th>Description</th></tr>
<tr><td><a href="ms-xhelp:///?Id=P%3aWindows.Foundation.Collections.IVectorView%601.Size">Size</a></td><td>Size.</td></tr>
</table>`)

	entry := singleEntry(t, parsePage(t, src))

	assert.Equal(t, "Windows.Foundation.Collections.IVectorView", entry.ID)
	it, ok := entry.Notation.(*notation.Interface)
	require.True(t, ok)
	assert.Equal(t, []string{"T"}, it.TypeParameters)
	assert.Equal(t, []string{"IIterable<T>"}, it.Interfaces)
	assert.Equal(t, []string{
		"Windows.Foundation.Collections.IVectorView.GetAt",
		"Windows.Foundation.Collections.IVectorView.IndexOf",
	}, it.Members.Methods)
	assert.Equal(t, []string{"Windows.Foundation.Collections.IVectorView.Size"}, it.Members.Properties)
}

func TestParse_Skips(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want SkipReason
	}{
		{
			name: "no help id",
			src:  `<html><head><title>x</title></head><body><div class="title">X class</div></body></html>`,
			want: SkipNoHelpID,
		},
		{
			name: "foreign id",
			src:  page("X class", "T:System.Object", `<p>x</p>`),
			want: SkipForeignID,
		},
		{
			name: "no language category",
			src: `<html><head><meta name="Microsoft.Help.Id" content="T:Windows.Foo.X">
<meta name="Microsoft.Help.Category" content="DevLang:csharp"></head>
<body><div class="title">X class</div><div id="mainSection"></div></body></html>`,
			want: SkipNoLanguage,
		},
		{
			name: "excluded namespace",
			src:  page("Button class", "T:Windows.UI.Xaml.Controls.Button", `<p>x</p>`),
			want: SkipExcluded,
		},
		{
			name: "meta page",
			src:  page("FileIO methods", "T:Windows.Storage.FileIO", `<p>x</p>`),
			want: SkipMeta,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parsePage(t, tt.src)
			assert.Equal(t, tt.want, result.Skip)
			assert.Empty(t, result.Entries)
		})
	}
}

func TestParse_UnrecognizedTitle(t *testing.T) {
	src := page("Roadmap overview", "T:Windows.Foo.Roadmap", `<p>x</p>`)

	result, err := New(DefaultOptions()).Parse(strings.NewReader(src))

	require.ErrorIs(t, err, ErrUnrecognizedTitle)
	require.NotNil(t, result)
	assert.Equal(t, SkipUnrecognized, result.Skip)
}
