package dispatch

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pulkyeet/sandwich-scanner/internal/sandwich"
)

func PrintSandwiches(w io.Writer, found []sandwich.Sandwich) {
	if len(found) == 0 {
		fmt.Fprintln(w, "No sandwich attacks detected.")
		return
	}

	fmt.Fprintf(w, "🥪 Found %d sandwich attack(s)!\n", len(found))
	for i, s := range found {
		fmt.Fprintf(w, "\nAttack #%d (block %d, %s pool %s):\n", i+1, s.Block, s.DEX, s.Pool.Hex())
		fmt.Fprintf(w, "  Front-run: %s\n", s.FrontRun.Hash.Hex())
		fmt.Fprintf(w, "  Victim:    %s\n", s.Victim.Hash.Hex())
		fmt.Fprintf(w, "  Back-run:  %s\n", s.BackRun.Hash.Hex())
		fmt.Fprintf(w, "  Attacker:  %s\n", s.Attacker().Hex())
	}
}

func PrintReport(w io.Writer, r Report) {
	fmt.Fprintln(w, "\nDetection result:")
	if r.Err != nil {
		fmt.Fprintf(w, "❌ Detection failed: %v\n", r.Err)
		return
	}
	PrintSandwiches(w, r.Sandwiches)
}

func PrintVerdict(w io.Writer, v Verdict) {
	fmt.Fprintln(w, "\nDetection result:")
	if v.Err != nil {
		fmt.Fprintf(w, "❌ Detection failed: %v\n", v.Err)
	}
	fmt.Fprintf(w, "Transaction %s sandwiched: %v\n", v.Hash.Hex(), v.Sandwiched)
	if !v.Sandwiched || v.Sandwich == nil {
		return
	}

	details, err := json.MarshalIndent(v.Sandwich, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "Attack details: %+v\n", *v.Sandwich)
		return
	}
	fmt.Fprintf(w, "🥪 Attack details:\n%s\n", details)
}
