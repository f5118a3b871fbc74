package app

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pulkyeet/sandwich-scanner/internal/config"
	"github.com/pulkyeet/sandwich-scanner/internal/console"
	"github.com/pulkyeet/sandwich-scanner/internal/dispatch"
	"github.com/pulkyeet/sandwich-scanner/internal/eth"
	"github.com/pulkyeet/sandwich-scanner/internal/sandwich"
)

type fakeQuerier struct {
	report  dispatch.Report
	verdict dispatch.Verdict

	gotAddr   common.Address
	gotOffset int
	gotDEX    string
	gotHash   common.Hash
	closed    int

	hashDeadline time.Time
}

func (f *fakeQuerier) ScanAddress(ctx context.Context, address common.Address, offset int, dex string) dispatch.Report {
	f.gotAddr, f.gotOffset, f.gotDEX = address, offset, dex
	return f.report
}

func (f *fakeQuerier) CheckTransaction(ctx context.Context, hash common.Hash) dispatch.Verdict {
	f.gotHash = hash
	f.hashDeadline, _ = ctx.Deadline()
	v := f.verdict
	v.Hash = hash
	return v
}

func (f *fakeQuerier) Close() error {
	f.closed++
	return nil
}

type openRecorder struct {
	q      *fakeQuerier
	err    error
	chains []eth.Chain

	deadline time.Time
}

func (o *openRecorder) open(ctx context.Context, cfg config.Config, chain eth.Chain) (Querier, error) {
	o.chains = append(o.chains, chain)
	o.deadline, _ = ctx.Deadline()
	if o.err != nil {
		return nil, o.err
	}
	return o.q, nil
}

func testConfig() config.Config {
	return config.Config{
		DEX:        "UniswapV2",
		Offset:     2,
		RPCTimeout: time.Second,
		RPCURLs:    map[string]string{"BASE": "https://base.example"},
	}
}

const victimHash = "0x0000000000000000000000000000000000000000000000000000000000000abc"

func runScript(t *testing.T, input string, rec *openRecorder) (string, error) {
	t.Helper()
	var out bytes.Buffer
	p := console.New(strings.NewReader(input), &out)
	defer p.Close()
	err := RunInteractive(context.Background(), p, testConfig(), rec.open)
	return out.String(), err
}

func TestInteractiveByHash(t *testing.T) {
	s := sandwich.Sandwich{
		Block:    100,
		FrontRun: sandwich.TxRef{Hash: common.HexToHash("0x1")},
		Victim:   sandwich.TxRef{Hash: common.HexToHash(victimHash)},
		BackRun:  sandwich.TxRef{Hash: common.HexToHash("0x2")},
	}
	rec := &openRecorder{q: &fakeQuerier{verdict: dispatch.Verdict{Block: 100, Sandwiched: true, Sandwich: &s}}}

	out, err := runScript(t, "3\n2\n"+victimHash+"\n", rec)
	if err != nil {
		t.Fatalf("RunInteractive: %v", err)
	}
	if len(rec.chains) != 1 || rec.chains[0].ChainID != eth.Base.ChainID {
		t.Fatalf("expected Base session, got %+v", rec.chains)
	}
	if rec.chains[0].RPC != "https://base.example" {
		t.Errorf("endpoint override not applied: %q", rec.chains[0].RPC)
	}
	if rec.q.gotHash != common.HexToHash(victimHash) {
		t.Errorf("wrong hash queried: %s", rec.q.gotHash)
	}
	if rec.q.closed != 1 {
		t.Errorf("session should be closed once, got %d", rec.q.closed)
	}
	if !strings.Contains(out, "sandwiched: true") {
		t.Errorf("verdict not printed:\n%s", out)
	}
}

func TestInteractiveByAddress(t *testing.T) {
	rec := &openRecorder{q: &fakeQuerier{}}
	addr := "0x00000000000000000000000000000000000000aa"

	out, err := runScript(t, "1\n1\n"+addr+"\n", rec)
	if err != nil {
		t.Fatalf("RunInteractive: %v", err)
	}
	if rec.q.gotAddr != common.HexToAddress(addr) || rec.q.gotOffset != 2 || rec.q.gotDEX != "UniswapV2" {
		t.Errorf("unexpected query args addr=%s offset=%d dex=%q", rec.q.gotAddr, rec.q.gotOffset, rec.q.gotDEX)
	}
	if !strings.Contains(out, "No sandwich attacks detected.") {
		t.Errorf("report not printed:\n%s", out)
	}
}

func TestInteractiveRejectsNonEVM(t *testing.T) {
	rec := &openRecorder{q: &fakeQuerier{}}

	out, err := runScript(t, "4\n", rec)
	if !errors.Is(err, eth.ErrUnsupportedChain) {
		t.Fatalf("expected ErrUnsupportedChain, got %v", err)
	}
	if len(rec.chains) != 0 {
		t.Error("no session should be opened for a non-EVM chain")
	}
	if !strings.Contains(out, "not supported") {
		t.Errorf("expected notice, got:\n%s", out)
	}
}

func TestInteractiveBadInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"bad address", "1\n1\nnot-an-address\n", ErrInvalidAddress},
		{"short hash", "1\n2\n0xabc\n", ErrInvalidHash},
		{"menu exhausted", "9\n9\n9\n", console.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &openRecorder{q: &fakeQuerier{}}
			if _, err := runScript(t, tt.input, rec); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if len(rec.chains) != 0 {
				t.Error("no session should be opened on bad input")
			}
		})
	}
}

func TestInteractiveConnectionFailureIsReported(t *testing.T) {
	rec := &openRecorder{err: errors.New("dial refused")}

	out, err := runScript(t, "2\n2\n"+victimHash+"\n", rec)
	if err != nil {
		t.Fatalf("connection failures should not propagate, got %v", err)
	}
	if !strings.Contains(out, "Could not connect") {
		t.Errorf("expected connection notice:\n%s", out)
	}
}

func TestInteractiveHashCheckSharesConnectBudget(t *testing.T) {
	rec := &openRecorder{q: &fakeQuerier{}}

	if _, err := runScript(t, "3\n2\n"+victimHash+"\n", rec); err != nil {
		t.Fatalf("RunInteractive: %v", err)
	}
	if rec.deadline.IsZero() {
		t.Fatal("connecting should be bounded by RPC_TIMEOUT")
	}
	if !rec.q.hashDeadline.Equal(rec.deadline) {
		t.Errorf("hash check got its own budget: connect deadline %v, check deadline %v",
			rec.deadline, rec.q.hashDeadline)
	}
}
