package jsrt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsrt/jsrt/value"
)

// These tests encode spec.md §8's six concrete end-to-end scenarios (S1-S6)
// verbatim: same input, same expected output. S2 and S3 also cover async
// suspension and generator return/finally handling.

func TestScenario_S1_ArithmeticDeterminism(t *testing.T) {
	e := New()
	v, err := e.Evaluate(`(function(){ return (1+2)*3; })();`)
	require.NoError(t, err)
	assert.Equal(t, value.Number(9), v)
}

func TestScenario_S2_AsyncControlFlow(t *testing.T) {
	e := New()
	_, err := e.Run(`
		let log = [];
		async function f(){ log.push('a'); await Promise.resolve(); log.push('b'); }
		f(); log.push('c');
		Promise.resolve().then(() => log.push('d'));
		globalThis.log = log;
	`)
	require.NoError(t, err)

	v, err := e.Evaluate("globalThis.log")
	require.NoError(t, err)
	arr, ok := v.(*value.Object)
	require.True(t, ok)
	assert.Equal(t, []value.Value{
		value.String("a"), value.String("c"), value.String("b"), value.String("d"),
	}, value.ArrayToSlice(arr))
}

func TestScenario_S3_GeneratorTryFinally(t *testing.T) {
	e := New()
	v, err := e.Evaluate(`
		function* g(){ try { yield 1; yield 2; } finally { yield 3; } }
		const it = g();
		[it.next().value, it.next().value, it.return(9).value, it.next().value, it.next().done];
	`)
	require.NoError(t, err)
	arr, ok := v.(*value.Object)
	require.True(t, ok)
	assert.Equal(t, []value.Value{
		value.Number(1), value.Number(2), value.Number(3), value.Number(9), value.Bool(true),
	}, value.ArrayToSlice(arr))
}

func TestScenario_S4_ClosuresAndLetInLoop(t *testing.T) {
	e := New()
	v, err := e.Evaluate(`
		let fns = [];
		for (let i = 0; i < 3; i++) fns.push(() => i);
		fns.map(f => f());
	`)
	require.NoError(t, err)
	arr, ok := v.(*value.Object)
	require.True(t, ok)
	assert.Equal(t, []value.Value{value.Number(0), value.Number(1), value.Number(2)}, value.ArrayToSlice(arr))
}

func TestScenario_S5_ModuleLiveBindings(t *testing.T) {
	e := New()
	e.SetModuleLoader(func(path string) (string, error) {
		if path == "counter.js" {
			return `export let n = 0; export function inc(){ n = n + 1; }`, nil
		}
		return "", assert.AnError
	})

	v, err := e.Evaluate(`import {n, inc} from 'counter.js'; inc(); inc(); n;`)
	require.NoError(t, err)
	assert.Equal(t, value.Number(2), v)
}

func TestScenario_S6_TimerAndPromiseOrdering(t *testing.T) {
	e := New()
	_, err := e.Run(`
		let log = [];
		setTimeout(() => log.push('t'), 0);
		Promise.resolve().then(() => log.push('p'));
		log.push('s');
		globalThis.log = log;
	`)
	require.NoError(t, err)

	v, err := e.Evaluate("globalThis.log")
	require.NoError(t, err)
	arr, ok := v.(*value.Object)
	require.True(t, ok)
	assert.Equal(t, []value.Value{
		value.String("s"), value.String("p"), value.String("t"),
	}, value.ArrayToSlice(arr))
}
