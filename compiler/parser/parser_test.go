package parser

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func translate(t *testing.T, src string) (string, error) {
	t.Helper()

	var buf bytes.Buffer

	p := New([]byte(src), &buf)
	err := p.Translate(context.Background())

	return buf.String(), err
}

func program(body string) string {
	return "import \"ifj25\" for Ifj\nclass Program {\n" + body + "}\n"
}

func TestEndToEnd(t *testing.T) {
	src := "import \"ifj25\" for Ifj\n" +
		"class Program {\n" +
		"static main() {\n" +
		"var x\n" +
		"x = 1\n" +
		"return x\n" +
		"}\n" +
		"}\n"

	out, err := translate(t, src)
	require.NoError(t, err)

	want := `.IFJcode25
CREATEFRAME
PUSHFRAME
LABEL $main
CREATEFRAME
PUSHFRAME
DEFVAR LF@x
MOVE LF@x nil@nil
PUSHS int@1
POPS LF@x
PUSHS LF@x
PUSHS nil@nil
POPFRAME
RETURN
CALL $main
EXIT int@0
`

	assert.Equal(t, want, out)

	t.Logf("result:\n%s", out)
}

func TestWhileLoopRuns(t *testing.T) {
	out, err := translate(t, program(`static main() {
var i
i = 0
while (i < 3) {
i = i + 1
}
return i
}
`))
	require.NoError(t, err)

	m := newMachine()
	m.run(t, out)

	require.True(t, m.exited)
	assert.Equal(t, int64(0), m.exitCode)

	// return pushed i, then the main epilog pushed its implicit nil on
	// top of it; that asymmetry is inherited behavior
	require.Len(t, m.stack, 2)
	assert.Equal(t, int64(3), m.stack[0])
	assert.Nil(t, m.stack[1])
}

func TestIfElse(t *testing.T) {
	run := func(t *testing.T, x int64) interface{} {
		src := program(`static main() {
var x
var r
x = ` + itoa(x) + `
if (x < 10) {
r = 1
} else {
r = 2
}
return r
}
`)

		out, err := translate(t, src)
		require.NoError(t, err)

		m := newMachine()
		m.run(t, out)

		require.True(t, m.exited)

		return m.vars["r"]
	}

	assert.Equal(t, int64(1), run(t, 5))
	assert.Equal(t, int64(2), run(t, 50))
}

func itoa(v int64) string {
	b := [20]byte{}
	i := len(b)

	neg := v < 0
	if neg {
		v = -v
	}

	for {
		i--
		b[i] = byte('0' + v%10)
		v /= 10

		if v == 0 {
			break
		}
	}

	if neg {
		i--
		b[i] = '-'
	}

	return string(b[i:])
}

func TestArityIdentity(t *testing.T) {
	// same name at different arities declares two independent symbols;
	// callees precede main because resolution happens at the call site
	_, err := translate(t, program(`static f(a) {
return 1
}
static f(a, b) {
return 2
}
static main() {
var x
x = f(1)
x = f(1, 2)
return x
}
`))
	assert.NoError(t, err)

	// same name at the same arity is a redefinition
	_, err = translate(t, program(`static main() {
return 0
}
static f(a) {
return 1
}
static f(z) {
return 2
}
`))
	assert.Equal(t, StatusRedefinition, StatusOf(err))
}

func TestGetterSetter(t *testing.T) {
	_, err := translate(t, program(`static value {
return 42
}
static value = (v) {
return v
}
static main() {
var x
x = value()
return x
}
`))
	assert.NoError(t, err)

	// a getter collides with a plain zero-arity function of the same name
	_, err = translate(t, program(`static main() {
return 0
}
static value {
return 1
}
static value() {
return 2
}
`))
	assert.Equal(t, StatusRedefinition, StatusOf(err))
}

func TestSetterParamIsLocal(t *testing.T) {
	// the setter parameter is pre-registered, the body may read it
	out, err := translate(t, program(`static main() {
return 0
}
static brightness = (level) {
return level + 1
}
`))
	require.NoError(t, err)
	assert.Contains(t, out, "PUSHS LF@level")
}

func TestScopeDiscard(t *testing.T) {
	// a local of one function is undefined in the next one, even with
	// identical name and declaration order
	_, err := translate(t, program(`static f() {
var x
x = 1
return x
}
static main() {
x = 2
return 0
}
`))
	assert.Equal(t, StatusUndefined, StatusOf(err))

	_, err = translate(t, program(`static f() {
var x
x = 1
return x
}
static main() {
return x
}
`))
	assert.Equal(t, StatusUndefined, StatusOf(err))
}

func TestBlocksShareFunctionScope(t *testing.T) {
	// if/while bodies do not open a scope: redeclaring inside collides
	_, err := translate(t, program(`static main() {
var x
x = 0
if (x < 1) {
var x
} else {
x = 2
}
return x
}
`))
	assert.Equal(t, StatusRedefinition, StatusOf(err))

	// and a var declared inside a block is visible after it
	_, err = translate(t, program(`static main() {
var c
c = 1
if (c < 2) {
var y
y = 5
} else {
c = 0
}
y = 7
return y
}
`))
	assert.NoError(t, err)
}

func TestVarRedefinition(t *testing.T) {
	_, err := translate(t, program(`static main() {
var x
var x
return 0
}
`))
	assert.Equal(t, StatusRedefinition, StatusOf(err))
}

func TestUndefinedAssignment(t *testing.T) {
	_, err := translate(t, program(`static main() {
x = 1
return 0
}
`))
	assert.Equal(t, StatusUndefined, StatusOf(err))
}

func TestGlobalsNeedNoDeclaration(t *testing.T) {
	out, err := translate(t, program(`static main() {
var x
__counter = 1
x = __counter + __fresh
return x
}
`))
	require.NoError(t, err)

	assert.Contains(t, out, "POPS GF@__counter")
	assert.Contains(t, out, "PUSHS GF@__fresh")
}

func TestCallResolution(t *testing.T) {
	// a wrong argument count misses the name_arity key and reads as an
	// undefined function, not a dedicated arity error
	_, err := translate(t, program(`static f(a) {
return a
}
static main() {
var x
x = f(1, 2)
return x
}
`))
	assert.Equal(t, StatusUndefined, StatusOf(err))

	// a callee not yet declared at the call site is equally undefined
	_, err = translate(t, program(`static main() {
var x
x = g(1)
return x
}
static g(a) {
return a
}
`))
	assert.Equal(t, StatusUndefined, StatusOf(err))
}

func TestBuiltinCallBypassesSymbols(t *testing.T) {
	out, err := translate(t, program(`static main() {
var x
x = Ifj.write(1)
return x
}
`))
	require.NoError(t, err)
	assert.Contains(t, out, "# Call to built-in function Ifj.write")
}

func TestCallArgumentsPushedInOrder(t *testing.T) {
	out, err := translate(t, program(`static f(a, b) {
return 0
}
static main() {
var x
x = f(1, 2)
return x
}
`))
	require.NoError(t, err)

	one := strings.Index(out, "PUSHS int@1")
	two := strings.Index(out, "PUSHS int@2")
	call := strings.Index(out, "CALL $f")

	require.True(t, one >= 0 && two >= 0 && call >= 0, "out:\n%s", out)
	assert.Less(t, one, two)
	assert.Less(t, two, call)
}

func TestBareCallStatementRejected(t *testing.T) {
	_, err := translate(t, program(`static main() {
f()
return 0
}
static f() {
return 0
}
`))
	assert.Equal(t, StatusSemOther, StatusOf(err))
}

func TestElseIsMandatory(t *testing.T) {
	_, err := translate(t, program(`static main() {
var x
x = 0
if (x < 1) {
x = 1
}
return x
}
`))
	assert.Equal(t, StatusSyntax, StatusOf(err))
}

func TestMissingMainIsLateError(t *testing.T) {
	out, err := translate(t, program(`static helper() {
return 1
}
`))
	assert.Equal(t, StatusUndefined, StatusOf(err))

	// the check runs at epilog time: the class body was fully translated
	assert.Contains(t, out, "LABEL $helper")
	assert.NotContains(t, out, "CALL $main")
}

func TestPrologErrors(t *testing.T) {
	testDatas := []struct {
		src  string
		code int
	}{
		{"class Program {\n}\n", StatusSyntax},
		{"import \"other\" for Ifj\nclass Program {\n}\n", StatusSyntax},
		{"import \"ifj25\" for Ifj\nclass Main {\n}\n", StatusSyntax},
		{"import \"ifj25\" for Ifj\nclass Program {\n@\n}\n", StatusLexical},
	}

	for _, td := range testDatas {
		_, err := translate(t, td.src)
		assert.Equal(t, td.code, StatusOf(err), "src: %q", td.src)
	}
}

func TestFirstErrorWins(t *testing.T) {
	_, err := translate(t, program(`static main() {
x = 1
var y
var y
return 0
}
`))

	// undefined assignment comes first; the later redefinition must not
	// replace the latched code
	assert.Equal(t, StatusUndefined, StatusOf(err))
}

func TestErrorMessageCarriesPosition(t *testing.T) {
	_, err := translate(t, "import \"ifj25\" for Ifj\nclass Program {\nstatic main() {\nx = 1\nreturn 0\n}\n}\n")
	require.Error(t, err)

	var e *Error
	require.ErrorAs(t, err, &e)

	assert.Equal(t, StatusUndefined, e.Code)
	assert.Equal(t, 4, e.Line)
	assert.Contains(t, e.Error(), "line 4")
}

func TestParenPrecedence(t *testing.T) {
	out, err := translate(t, program(`static main() {
var x
x = (1 + 2) * 3
return x
}
`))
	require.NoError(t, err)

	m := newMachine()
	m.run(t, out)

	require.True(t, m.exited)
	assert.Equal(t, int64(9), m.vars["x"])
}

func TestLeftAssociativity(t *testing.T) {
	out, err := translate(t, program(`static main() {
var x
x = 10 - 4 - 3
return x
}
`))
	require.NoError(t, err)

	m := newMachine()
	m.run(t, out)

	require.True(t, m.exited)
	assert.Equal(t, int64(3), m.vars["x"])
}

func TestIsExpressionInProgram(t *testing.T) {
	out, err := translate(t, program(`static main() {
var x
x = 1.5 is Num
return x
}
`))
	require.NoError(t, err)

	m := newMachine()
	m.run(t, out)

	require.True(t, m.exited)
	assert.Equal(t, true, m.vars["x"])
}
