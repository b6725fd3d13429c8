package wasm

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// errnoBadf is the WASI errno for a bad file descriptor.
const errnoBadf = 8

type hostStub struct {
	fn      api.GoModuleFunc
	name    string
	params  []api.ValueType
	results []api.ValueType
}

var i32Sig = []api.ValueType{api.ValueTypeI32}

// adapterStubs are imported by guests linked with the preview1 adapter
// shim, in addition to the plain WASI functions.
var adapterStubs = []hostStub{
	{
		name: "reset_adapter_state",
		fn:   func(context.Context, api.Module, []uint64) {},
	},
	{
		name: "adapter_close_badfd", params: i32Sig, results: i32Sig,
		fn: func(_ context.Context, _ api.Module, stack []uint64) { stack[0] = errnoBadf },
	},
	{
		name: "adapter_open_badfd", params: i32Sig, results: i32Sig,
		fn: func(_ context.Context, _ api.Module, stack []uint64) { stack[0] = uint64(^uint32(0)) },
	},
}

// instantiateWASI registers wasi_snapshot_preview1 in r. Guest stdio is
// configured per module through its wazero.ModuleConfig.
func instantiateWASI(ctx context.Context, r wazero.Runtime) (api.Module, error) {
	b := r.NewHostModuleBuilder(wasi_snapshot_preview1.ModuleName)
	wasi_snapshot_preview1.NewFunctionExporter().ExportFunctions(b)
	for _, s := range adapterStubs {
		b = b.NewFunctionBuilder().
			WithGoModuleFunction(s.fn, s.params, s.results).
			Export(s.name)
	}
	return b.Instantiate(ctx)
}
