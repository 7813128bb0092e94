package eval

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sable-lang/sable/internal/diagnostic"
	serrors "github.com/sable-lang/sable/internal/errors"
	"github.com/sable-lang/sable/internal/reader"
	"github.com/sable-lang/sable/internal/types"
	"github.com/sable-lang/sable/internal/value"
)

// evalExpr evaluates a single expression in a fresh global environment.
func evalExpr(t *testing.T, src string) (value.Value, error) {
	t.Helper()
	expr, err := reader.ParseExpr(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	state := NewCompilerState(StateConfig{})
	return NewContext(NewGlobalEnvironment(), state, nil).Eval(expr)
}

type moduleRun struct {
	values []value.Value
	state  *CompilerState
	env    *value.Environment
	out    *bytes.Buffer
}

func evalModule(t *testing.T, src string, setup ...func(*CompilerState)) moduleRun {
	t.Helper()
	mod, err := reader.ParseString("test.sb", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out := &bytes.Buffer{}
	state := NewCompilerState(StateConfig{Out: out})
	for _, fn := range setup {
		fn(state)
	}
	env := NewGlobalEnvironment()
	return moduleRun{values: state.EvalModule(env, mod), state: state, env: env, out: out}
}

func expectKind(t *testing.T, src string, err error, kind serrors.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected %s error, got none", src, kind)
	}
	if !serrors.Is(err, kind) {
		t.Fatalf("%s: expected %s error, got %v", src, kind, err)
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"(+ 1 2)", "3"},
		{"(- 10 4)", "6"},
		{"(* 6 7)", "42"},
		{"(/ 7 2)", "3"},
		{"(/ 7.0 2.0)", "3.5"},
		{"(+ 0.5 0.25)", "0.75"},
		{"(== (+ 1 2) 3)", "true"},
		{"(!= 1 2)", "true"},
		{"(< 1 2)", "true"},
		{"(>= \"b\" \"a\")", "true"},
		{"(<= 2.5 2.5)", "true"},
	}

	for _, tt := range tests {
		v, err := evalExpr(t, tt.src)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.src, err)
			continue
		}
		if v.String() != tt.want {
			t.Errorf("%s = %s, want %s", tt.src, v, tt.want)
		}
	}
}

func TestArithmeticErrors(t *testing.T) {
	tests := []struct {
		src  string
		kind serrors.Kind
	}{
		{"(+ 1 2.0)", serrors.KindTypeMismatch},
		{"(* 1.0 2)", serrors.KindTypeMismatch},
		{"(+ \"a\" 1)", serrors.KindTypeMismatch},
		{"(== 1 1.0)", serrors.KindTypeMismatch},
		{"(/ 1 0)", serrors.KindSyntax},
		{"(* 170141183460469231731687303715884105727 2)", serrors.KindSyntax},
		{"(+ 1)", serrors.KindArity},
		{"(+ x 1)", serrors.KindUndefinedVariable},
		{"(1 2)", serrors.KindNotCallable},
	}

	for _, tt := range tests {
		_, err := evalExpr(t, tt.src)
		expectKind(t, tt.src, err, tt.kind)
	}
}

func TestShortCircuit(t *testing.T) {
	run := evalModule(t, `
(&& false (print "and"))
(|| true (print "or"))
(&& true (< 1 2))
(|| false false)
`)
	if run.out.Len() != 0 {
		t.Fatalf("right operand evaluated: output %q", run.out.String())
	}
	want := []string{"false", "true", "true", "false"}
	for i, w := range want {
		if got := run.values[i].String(); got != w {
			t.Errorf("item %d = %s, want %s", i, got, w)
		}
	}
	if run.state.Diagnostics.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", run.state.Drain())
	}

	_, err := evalExpr(t, "(&& true 1)")
	expectKind(t, "(&& true 1)", err, serrors.KindTypeMismatch)
}

func TestScopingAndClosures(t *testing.T) {
	run := evalModule(t, `
(let x 1)
(fn get_x x)
(fn call_with_x x (get_x))
(__block__ (let x 2) x)
x
(call_with_x 99)
(= x 5)
(get_x)
`)
	if run.state.Diagnostics.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", run.state.Drain())
	}
	checks := map[int]string{3: "2", 4: "1", 5: "1", 7: "1"}
	for i, want := range checks {
		if got := run.values[i].String(); got != want {
			t.Errorf("item %d = %s, want %s", i, got, want)
		}
	}
	if v, _ := run.env.Get("x"); v.String() != "5" {
		t.Errorf("x = %s after assignment, want 5", v)
	}
}

func TestScopeDepthIsRestored(t *testing.T) {
	expr, err := reader.ParseExpr("(__block__ (let z 1) (__block__ (+ z missing)))")
	if err != nil {
		t.Fatal(err)
	}
	env := NewGlobalEnvironment()
	before := env.Depth()
	_, err = NewContext(env, NewCompilerState(StateConfig{}), nil).Eval(expr)
	expectKind(t, "nested block", err, serrors.KindUndefinedVariable)
	if env.Depth() != before {
		t.Fatalf("depth %d after failed block, want %d", env.Depth(), before)
	}
	if _, ok := env.Get("z"); ok {
		t.Fatalf("block-local binding leaked")
	}
}

func TestRecursionBeforeDefinition(t *testing.T) {
	run := evalModule(t, `
(fact 5)
(fn fact n (match (<= n 1) (-> true 1) (-> false (* n (fact (- n 1))))))
`)
	if run.state.Diagnostics.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", run.state.Drain())
	}
	if got := run.values[0].String(); got != "120" {
		t.Fatalf("fact 5 = %s, want 120", got)
	}
}

func TestPipeline(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"(|> 5 (add 3))", "8"},
		{"(add 5 3)", "8"},
		{"(|> (|> 10 (- 2)) (* 3))", "24"},
		{"(|> -4 abs)", "4"},
		{"(|> [1 2] (push 3))", "[1, 2, 3]"},
	}
	for _, tt := range tests {
		v, err := evalExpr(t, tt.src)
		if err != nil {
			t.Errorf("%s: %v", tt.src, err)
			continue
		}
		if v.String() != tt.want {
			t.Errorf("%s = %s, want %s", tt.src, v, tt.want)
		}
	}

	for _, src := range []string{"(|> true (&& false))", "(|> true (when 1))", "(|> 1 let)"} {
		_, err := evalExpr(t, src)
		expectKind(t, src, err, serrors.KindSyntax)
	}
}

func TestIndexing(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"(__index__ [10 20 30] 0)", "10"},
		{"(__index__ [10 20 30] -1)", "30"},
		{"(__index__ [10 20 30] -3)", "10"},
		{"(__index__ (__tuple__ 1 \"a\") 1)", "\"a\""},
	}
	for _, tt := range tests {
		v, err := evalExpr(t, tt.src)
		if err != nil {
			t.Errorf("%s: %v", tt.src, err)
			continue
		}
		if v.String() != tt.want {
			t.Errorf("%s = %s, want %s", tt.src, v, tt.want)
		}
	}

	for _, src := range []string{"(__index__ [1 2] 2)", "(__index__ [1 2] -3)", "(__index__ [] 0)"} {
		_, err := evalExpr(t, src)
		expectKind(t, src, err, serrors.KindSyntax)
	}
	_, err := evalExpr(t, "(__index__ [1 2] 1.0)")
	expectKind(t, "float index", err, serrors.KindTypeMismatch)
}

func TestRecords(t *testing.T) {
	v, err := evalExpr(t, "(__block__ (let x 3) {x (= y 4)})")
	if err != nil {
		t.Fatal(err)
	}
	rec := v.(value.Record)
	if x, _ := rec.Field("x"); x.String() != "3" {
		t.Errorf("shorthand field x = %v", x)
	}
	if y, _ := rec.Field("y"); y.String() != "4" {
		t.Errorf("field y = %v", y)
	}

	_, err = evalExpr(t, "{(= x 1) (= x 2)}")
	expectKind(t, "duplicate field", err, serrors.KindSyntax)
	_, err = evalExpr(t, "(. {(= a 1)} b)")
	expectKind(t, "missing field", err, serrors.KindSyntax)
	_, err = evalExpr(t, "(. 1 b)")
	expectKind(t, "field of integer", err, serrors.KindTypeMismatch)
}

func TestFieldAssignment(t *testing.T) {
	run := evalModule(t, `
(let r {(= xs []) (= n 1)})
(= (. r xs) [1])
(. r xs)
(= (. r n) "one")
`)
	if got := run.values[2].String(); got != "[1]" {
		t.Errorf("r.xs = %s, want [1]", got)
	}
	diags := run.state.Drain()
	if len(diags) != 1 || diags[0].Code != serrors.KindTypeMismatch.Code() {
		t.Fatalf("diagnostics = %v, want one type mismatch for n", diags)
	}
}

func TestStructs(t *testing.T) {
	run := evalModule(t, `
(struct Point {(= x Integer) (= y Integer)})
(let p (Point 1 2))
(. p x)
(= (. p y) 5)
(. p y)
(. (Point {(= y 20) (= x 10)}) x)
`)
	if run.state.Diagnostics.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", run.state.Drain())
	}
	if got := run.values[2].String(); got != "1" {
		t.Errorf("p.x = %s, want 1", got)
	}
	if got := run.values[4].String(); got != "5" {
		t.Errorf("p.y = %s after assignment, want 5", got)
	}
	if got := run.values[5].String(); got != "10" {
		t.Errorf("record-constructed x = %s, want 10", got)
	}
	p, _ := run.env.Get("p")
	if got := p.(value.Record).TypeName; got != "Point" {
		t.Errorf("p has type name %q", got)
	}

	errs := evalModule(t, `
(struct Point {(= x Integer) (= y Integer)})
(let p (Point 1 2))
(Point 1.0 2)
(Point 1)
(= (. p y) "five")
(. p z)
`)
	want := []string{
		serrors.KindTypeMismatch.Code(),
		serrors.KindArity.Code(),
		serrors.KindTypeMismatch.Code(),
		serrors.KindSyntax.Code(),
	}
	got := errs.state.Diagnostics.GetErrors()
	if len(got) != len(want) {
		t.Fatalf("got %d errors, want %d: %v", len(got), len(want), got)
	}
	for i, d := range got {
		if d.Code != want[i] {
			t.Errorf("error %d: code %s, want %s (%s)", i, d.Code, want[i], d.Message)
		}
	}
}

func TestStructsAreNominal(t *testing.T) {
	run := evalModule(t, `
(struct A {(= v Integer)})
(struct B {(= v Integer)})
(A 1)
(B 1)
(== (A 1) (A 1))
`)
	if value.Equal(run.values[2], run.values[3]) {
		t.Fatalf("values of different structs compared equal")
	}
	if got := run.values[4].String(); got != "true" {
		t.Fatalf("(A 1) == (A 1) = %s", got)
	}
	if types.Equal(value.TypeOf(run.values[2]), value.TypeOf(run.values[3])) {
		t.Fatalf("struct types A and B are equal")
	}
}

func TestMatchAndConditionals(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"(match (< 1 2) (-> true \"yes\") (-> false \"no\"))", "\"yes\""},
		{"(match false (-> true 1) (-> false 2))", "2"},
		{"(when true 5)", "5"},
		{"(when false 5)", "nil"},
		{"(unless false 5)", "5"},
		{"(unless true 5)", "nil"},
	}
	for _, tt := range tests {
		v, err := evalExpr(t, tt.src)
		if err != nil {
			t.Errorf("%s: %v", tt.src, err)
			continue
		}
		if v.String() != tt.want {
			t.Errorf("%s = %s, want %s", tt.src, v, tt.want)
		}
	}

	_, err := evalExpr(t, "(match false (-> true 1))")
	expectKind(t, "no arm", err, serrors.KindSyntax)
	_, err = evalExpr(t, "(match 1 (-> true 1) (-> false 2))")
	expectKind(t, "integer scrutinee", err, serrors.KindTypeMismatch)
	_, err = evalExpr(t, "(match true (-> 1 1))")
	expectKind(t, "literal pattern", err, serrors.KindSyntax)
}

func TestMatchInspectsArmsLazily(t *testing.T) {
	v, err := evalExpr(t, "(match true (-> true 1) (-> 7 2))")
	if err != nil {
		t.Fatalf("arm after the selected one was inspected: %v", err)
	}
	if v.String() != "1" {
		t.Fatalf("match = %s, want 1", v)
	}

	run := evalModule(t, `(match (__block__ (print "seen") false) (-> 7 1))`)
	if run.out.String() != "seen\n" {
		t.Errorf("scrutinee not evaluated before the bad arm: output %q", run.out.String())
	}
	diags := run.state.Drain()
	if len(diags) != 1 || diags[0].Code != serrors.KindSyntax.Code() {
		t.Fatalf("diagnostics = %v, want one syntax error", diags)
	}
}

func TestAssert(t *testing.T) {
	if _, err := evalExpr(t, "(assert (== 1 1))"); err != nil {
		t.Fatalf("passing assertion failed: %v", err)
	}

	_, err := evalExpr(t, `(assert (== 1 2) "math is broken")`)
	expectKind(t, "assert", err, serrors.KindAssertion)
	e, _ := serrors.As(err)
	if e.Source != "(== 1 2)" {
		t.Errorf("assertion source = %q", e.Source)
	}
	if !strings.Contains(e.Message, "math is broken") {
		t.Errorf("assertion message = %q", e.Message)
	}

	_, err = evalExpr(t, "(assert (== 1 2) 3)")
	expectKind(t, "non-string message", err, serrors.KindTypeMismatch)
}

func TestAssertEchoesSourceText(t *testing.T) {
	run := evalModule(t, "(assert (<   2 1))")
	errs := run.state.Diagnostics.GetErrors()
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if errs[0].Source != "(<   2 1)" {
		t.Fatalf("source = %q, want the text as written", errs[0].Source)
	}
}

func TestModuleErrorIsolation(t *testing.T) {
	run := evalModule(t, `
(let a 1)
(+ a undefined_name)
(+ a 1)
`)
	if got := run.values[2].String(); got != "2" {
		t.Fatalf("item after failure = %s, want 2", got)
	}
	if _, ok := run.values[1].(value.Nil); !ok {
		t.Fatalf("failed item = %v, want nil", run.values[1])
	}
	diags := run.state.Drain()
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(diags), diags)
	}
	if diags[0].Code != serrors.KindUndefinedVariable.Code() {
		t.Fatalf("diagnostic code %s", diags[0].Code)
	}
	if len(run.state.Drain()) != 0 {
		t.Fatalf("drain did not clear diagnostics")
	}
}

func TestDanglingAttribute(t *testing.T) {
	for _, src := range []string{"(+ 1 1)\n@inline", "(__block__ 1 @inline)"} {
		run := evalModule(t, src)
		warnings := run.state.Diagnostics.GetWarnings()
		if len(warnings) != 1 || warnings[0].Code != "W2001" {
			t.Errorf("%q: warnings = %v, want one W2001", src, warnings)
		}
		if run.state.Diagnostics.HasErrors() {
			t.Errorf("%q: unexpected errors", src)
		}
	}
}

func TestAttributesAttachToNextItem(t *testing.T) {
	run := evalModule(t, `
@test
(+ 1 2)
(fn not_a_test 1)
@test
(fn real_test (== 1 1))
`)
	if len(run.state.Tests) != 1 || run.state.Tests[0].Name != "real_test" {
		names := make([]string, len(run.state.Tests))
		for i, fn := range run.state.Tests {
			names[i] = fn.Name
		}
		t.Fatalf("tests = %v, want [real_test]", names)
	}
	fn, _ := run.state.Defs["real_test"].(*value.UserFunction)
	if fn == nil || len(fn.Attributes) != 1 {
		t.Fatalf("real_test attributes not recorded")
	}
}

func TestRunTests(t *testing.T) {
	mod, err := reader.ParseString("tests.sb", `
@test
(fn passes (== (+ 1 1) 2))
@test
(fn fails (assert (== 1 2) "nope"))
@test
(fn returns_false false)
`)
	if err != nil {
		t.Fatal(err)
	}
	state := NewCompilerState(StateConfig{})
	state.EvalModule(NewGlobalEnvironment(), mod)

	results := state.RunTests(mod.Source)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	want := map[string]bool{"passes": true, "fails": false, "returns_false": false}
	for _, r := range results {
		if r.Passed != want[r.Name] {
			t.Errorf("%s: passed = %t, err = %v", r.Name, r.Passed, r.Err)
		}
	}
	if !serrors.Is(results[1].Err, serrors.KindAssertion) {
		t.Errorf("fails: err = %v, want assertion failure", results[1].Err)
	}
}

func TestAttributeForm(t *testing.T) {
	run := evalModule(t, `
(@ test)
(fn checked (== 1 1))
(fn unchecked (== 1 2))
`)
	if diags := run.state.Drain(); len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(run.state.Tests) != 1 || run.state.Tests[0].Name != "checked" {
		t.Fatalf("registered tests = %v, want only checked", run.state.Tests)
	}
	results := run.state.RunTests(nil)
	if len(results) != 1 || !results[0].Passed {
		t.Fatalf("results = %+v", results)
	}
}

func TestAssignDelegatesToDeclarations(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "let",
			src:  "(= (let x) 5)\nx",
			want: []string{"5", "5"},
		},
		{
			name: "fn",
			src:  "(= (fn double p) (* p 2))\n(double 4)",
			want: []string{"", "8"},
		},
		{
			name: "fn is hoisted",
			src:  "(triple 3)\n(= (fn triple p) (* p 3))",
			want: []string{"9", ""},
		},
		{
			name: "fn with two parameters",
			src:  "(= (fn sub a b) (- a b))\n(sub 10 4)",
			want: []string{"", "6"},
		},
		{
			name: "inner let shadows and is undone",
			src:  "(= (let x) 1)\n(__block__ (= (let x) 2) x)\nx",
			want: []string{"1", "2", "1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := evalModule(t, tt.src)
			if diags := run.state.Drain(); len(diags) != 0 {
				t.Fatalf("unexpected diagnostics: %v", diags)
			}
			for i, want := range tt.want {
				if want == "" {
					continue
				}
				if got := run.values[i].String(); got != want {
					t.Errorf("item %d = %s, want %s", i, got, want)
				}
			}
		})
	}
}

func TestTypeof(t *testing.T) {
	tests := []struct {
		src  string
		want *types.Type
	}{
		{"(typeof (+ 1 2))", types.Integer},
		{"(typeof (< 1 2))", types.Bool},
		{"(typeof [1 2])", types.NewList(types.Integer)},
		{"(typeof \"s\")", types.String},
		{"(typeof (__block__ (let x 1.5) x))", types.Float},
	}
	for _, tt := range tests {
		v, err := evalExpr(t, tt.src)
		if err != nil {
			t.Errorf("%s: %v", tt.src, err)
			continue
		}
		got, ok := v.(value.Type)
		if !ok || !types.Equal(got.T, tt.want) {
			t.Errorf("%s = %v, want %s", tt.src, v, tt.want)
		}
	}

	run := evalModule(t, "(typeof (+ 1 \"a\"))")
	got := run.values[0].(value.Type)
	if got.T.Kind != types.KindUnknown {
		t.Errorf("ill-typed expression typed as %s", got.T)
	}
	if len(run.state.Diagnostics.GetWarnings()) != 1 {
		t.Errorf("inference failure not reported as a warning")
	}
	if run.state.Diagnostics.HasErrors() {
		t.Errorf("inference failure reported as an error")
	}
}

func TestUnits(t *testing.T) {
	run := evalModule(t, `
(measure m)
(= (measure km) (m 1000))
(+ (km 1) (m 500))
(magnitude (convert (km 2) m))
(+ (km 1) 2)
`)
	if run.state.Diagnostics.HasErrors() {
		t.Fatalf("unexpected diagnostics: %v", run.state.Drain())
	}
	q := run.values[2].(value.Quantity)
	if q.Value != 1.5 || q.Unit != "km" {
		t.Errorf("1 km + 500 m = %s, want 1.5 km", q)
	}
	if got := run.values[3].String(); got != "2000.0" {
		t.Errorf("2 km in m = %s", got)
	}
	if q := run.values[4].(value.Quantity); q.Value != 3 {
		t.Errorf("1 km + 2 = %s", q)
	}

	errs := evalModule(t, `
(measure m)
(measure s)
(= (measure mi) (furlong 8))
(+ (m 1) (s 1))
(* (m 1) (m 1))
`)
	want := []string{
		serrors.KindSyntax.Code(),
		serrors.KindTypeMismatch.Code(),
		serrors.KindTypeMismatch.Code(),
	}
	got := errs.state.Diagnostics.GetErrors()
	if len(got) != len(want) {
		t.Fatalf("got %d errors, want %d: %v", len(got), len(want), got)
	}
	for i, d := range got {
		if d.Code != want[i] {
			t.Errorf("error %d: code %s, want %s (%s)", i, d.Code, want[i], d.Message)
		}
	}
}

func TestBuiltins(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"(len [1 2 3])", "3"},
		{"(len \"héllo\")", "5"},
		{"(head [4 5])", "4"},
		{"(tail [4 5 6])", "[5, 6]"},
		{"(str 42)", "\"42\""},
		{"(abs -2.5)", "2.5"},
		{"(sqrt 16)", "4.0"},
		{"(float 3)", "3.0"},
		{"(int -3.9)", "-3"},
		{"(symbol \"ok\")", ":ok"},
		{"(== (symbol \"a\") (symbol \"a\"))", "true"},
	}
	for _, tt := range tests {
		v, err := evalExpr(t, tt.src)
		if err != nil {
			t.Errorf("%s: %v", tt.src, err)
			continue
		}
		if v.String() != tt.want {
			t.Errorf("%s = %s, want %s", tt.src, v, tt.want)
		}
	}

	_, err := evalExpr(t, "(head [])")
	expectKind(t, "head of empty", err, serrors.KindSyntax)
	_, err = evalExpr(t, "(len 1 2)")
	expectKind(t, "len arity", err, serrors.KindArity)

	run := evalModule(t, `(print "a" 1 [2])`)
	if got := run.out.String(); got != "a 1 [2]\n" {
		t.Errorf("print wrote %q", got)
	}
}

func TestFormSupport(t *testing.T) {
	support := FormNames()
	tests := map[string]Support{
		"+":         Supported,
		"match":     Supported,
		"__block__": Supported,
		"let":       Supported,
		"=":         Partial,
		"fn":        Unsupported,
		"|>":        Unsupported,
		"assert":    Unsupported,
	}
	for name, want := range tests {
		if got, ok := support[name]; !ok || got != want {
			t.Errorf("%s: support %s, want %s", name, got, want)
		}
	}
	for name := range support {
		if _, ok := LookupForm(name); !ok {
			t.Errorf("form %s listed but not found", name)
		}
	}
}

func TestDiagnosticsConfigApplies(t *testing.T) {
	mod, err := reader.ParseString("t.sb", "(+ 1 \"a\")\n(+ 1 \"b\")\n(+ 1 \"c\")")
	if err != nil {
		t.Fatal(err)
	}
	state := NewCompilerState(StateConfig{Diagnostics: diagnostic.DiagnosticConfig{MaxErrors: 2}})
	state.EvalModule(NewGlobalEnvironment(), mod)
	diags := state.Drain()
	if len(diags) != 3 {
		t.Fatalf("got %d diagnostics, want two errors and a truncation notice", len(diags))
	}
	if diags[2].Code != "E0001" {
		t.Fatalf("last diagnostic %s, want truncation notice E0001", diags[2].Code)
	}
}
