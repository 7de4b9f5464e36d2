package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seitarof/gen-uwp-dts/internal/decl"
)

var testArity = Arity{
	"Windows.Foundation.TypedEventHandler":                       2,
	"Windows.Foundation.Collections.IVector":                     1,
	"Windows.Foundation.IPromiseWithIAsyncActionWithProgress":    1,
	"Windows.Foundation.IPromiseWithIAsyncOperationWithProgress": 2,
}

func TestResolver_Type(t *testing.T) {
	r := NewDefault(testArity)

	tests := []struct {
		in   string
		want string
	}{
		{in: "Number", want: "number"},
		{in: "String", want: "string"},
		{in: "Boolean", want: "boolean"},
		{in: "Object", want: "any"},
		{in: "unknown", want: "any"},
		{in: "", want: "any"},
		{in: "Windows.Foundation.DateTime", want: "Date"},
		{in: "array of Windows.Storage.StorageFile", want: "Windows.Storage.StorageFile[]"},
		{in: "array of Number", want: "number[]"},
		{in: "Windows.Foundation.TypedEventHandler", want: "Windows.Foundation.TypedEventHandler<any, any>"},
		{in: "Windows.Foundation.Collections.IVector<String>", want: "Windows.Foundation.Collections.IVector<string>"},
		{in: "Windows.Foundation.IPromise<Windows.Foundation.Collections.IVector>", want: "Windows.Foundation.IPromise<Windows.Foundation.Collections.IVector<any>>"},
		{in: "Windows.Storage.StorageFile", want: "Windows.Storage.StorageFile"},
		{in: "TResult", want: "TResult"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Type(tt.in))
		})
	}
}

func TestResolver_Placeholder(t *testing.T) {
	r := NewDefault(nil)

	assert.Equal(t, "Function", r.Placeholder("function"))
	assert.Equal(t, "number", r.Placeholder("number"))
	assert.Equal(t, "any", r.Placeholder("unknown"))
	assert.Equal(t, "any", r.Placeholder("MediaCapture"))
}

func TestResolver_FoldsTwoOutParameters(t *testing.T) {
	r := NewDefault(nil)
	sig := decl.Signature{Parameters: []decl.Field{
		{Name: "key", Type: "String"},
		{Name: "index [out]", Type: "UInt32"},
		{Name: "found[out]", Type: "Boolean"},
	}}

	got := r.Signature("tryFind", sig)

	require.Len(t, got.Parameters, 1)
	assert.Equal(t, "key", got.Parameters[0].Name)
	assert.Equal(t, "{ index: number; found: boolean; }", got.Return)
	assert.Len(t, sig.Parameters, 3, "input signature is left untouched")
	assert.Nil(t, sig.Return)
}

func TestResolver_MovesSingleOutParameterToReturn(t *testing.T) {
	r := NewDefault(nil)

	got := r.Signature("tryGet", decl.Signature{Parameters: []decl.Field{
		{Name: "value [out]", Type: "Windows.Foundation.Rect", Description: "The bounds."},
	}})

	assert.Empty(t, got.Parameters)
	assert.Equal(t, "Windows.Foundation.Rect", got.Return)
	assert.Equal(t, "The bounds.", got.ReturnDescription)
}

func TestResolver_AppendsReturnValueAfterOutParameters(t *testing.T) {
	r := NewDefault(nil)

	got := r.Signature("indexOf", decl.Signature{
		Parameters: []decl.Field{
			{Name: "value", Type: "T"},
			{Name: "index [out]", Type: "UInt32"},
		},
		Return: &decl.Return{Type: "Boolean", Description: "Whether found."},
	})

	assert.Equal(t, "{ index: number; returnValue: boolean; }", got.Return)
	assert.Equal(t, "Whether found.", got.ReturnDescription)
}

func TestResolver_AsyncResults(t *testing.T) {
	r := NewDefault(testArity)

	tests := []struct {
		ret  string
		want string
	}{
		{ret: "Windows.Foundation.IAsyncAction", want: "Windows.Foundation.IPromiseWithIAsyncAction"},
		{ret: "Windows.Foundation.IAsyncOperation", want: "Windows.Foundation.IPromiseWithIAsyncOperation<any>"},
		{ret: "Windows.Foundation.IAsyncOperation<String>", want: "Windows.Foundation.IPromiseWithIAsyncOperation<string>"},
		{ret: "Windows.Foundation.IAsyncActionWithProgress", want: "Windows.Foundation.IPromiseWithIAsyncActionWithProgress<any>"},
		{ret: "Windows.Foundation.IAsyncOperationWithProgress", want: "Windows.Foundation.IPromiseWithIAsyncOperationWithProgress<any, any>"},
		{ret: "String", want: "Windows.Foundation.IPromise<string>"},
		{ret: "unknown", want: "Windows.Foundation.IPromise<any>"},
	}
	for _, tt := range tests {
		t.Run(tt.ret, func(t *testing.T) {
			got := r.Signature("readTextAsync", decl.Signature{Return: &decl.Return{Type: tt.ret}})
			assert.Equal(t, tt.want, got.Return)
		})
	}
}

func TestResolver_AsyncRuleNeedsSuffix(t *testing.T) {
	r := NewDefault(nil)

	got := r.Signature("getResults", decl.Signature{Return: &decl.Return{Type: "Windows.Foundation.IAsyncAction"}})

	assert.Equal(t, "Windows.Foundation.IAsyncAction", got.Return)
}

func TestResolver_ConstructorsAndVoid(t *testing.T) {
	r := NewDefault(nil)

	ctor := r.Signature("constructor", decl.Signature{
		Parameters: []decl.Field{{Name: "uri", Type: "String"}},
		Return:     &decl.Return{Instance: true},
	})
	assert.True(t, ctor.Constructor)
	assert.Empty(t, ctor.Return)
	assert.Equal(t, []Parameter{{Name: "uri", Type: "string"}}, ctor.Parameters)

	void := r.Signature("close", decl.Signature{})
	assert.Equal(t, "void", void.Return)
	assert.False(t, void.Constructor)
}

func TestSplitGeneric(t *testing.T) {
	base, args, ok := SplitGeneric("IMap<String, IVector<Int32>>")
	require.True(t, ok)
	assert.Equal(t, "IMap", base)
	assert.Equal(t, []string{"String", "IVector<Int32>"}, args)

	_, _, ok = SplitGeneric("String")
	assert.False(t, ok)
}

type upperRule struct{}

func (upperRule) Name() string { return "upper" }

func (upperRule) Try(name string, _ func(string) string) (string, bool) {
	if name != "shout" {
		return "", false
	}
	return "SHOUT", true
}

func TestNew_CustomRuleChain(t *testing.T) {
	r := New(nil, []Rule{upperRule{}}, nil)

	assert.Equal(t, "SHOUT", r.Type("shout"))
	assert.Equal(t, "Number", r.Type("Number"), "unmatched names fall through unchanged")
}
