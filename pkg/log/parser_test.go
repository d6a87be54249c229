package log

import (
	"testing"
)

const (
	amm    = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	tokenP = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	budget = "ComputeBudget111111111111111111111111111111"
)

var swapLogs = []string{
	"Program " + budget + " invoke [1]",
	"Program " + budget + " success",
	"Program " + amm + " invoke [1]",
	"Program log: ray_log: A4CWmAAAAAAA",
	"Program " + tokenP + " invoke [2]",
	"Program log: Instruction: Transfer",
	"Program " + tokenP + " consumed 4645 of 180000 compute units",
	"Program " + tokenP + " success",
	"Program data: AQID",
	"Program " + amm + " consumed 31000 of 200000 compute units",
	"Program " + amm + " success",
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		raw  string
		kind Kind
	}{
		{"Program " + amm + " invoke [1]", KindInvoke},
		{"Program " + amm + " success", KindSuccess},
		{"Program " + amm + " failed: custom program error: 0x26", KindFailed},
		{"Program log: hello", KindLog},
		{"Program data: AQID", KindData},
		{"Program " + amm + " consumed 10 of 200000 compute units", KindConsumed},
		{"Log truncated", KindOther},
	}
	for _, tt := range tests {
		if got := ParseLine(tt.raw); got.Kind != tt.kind {
			t.Errorf("ParseLine(%q).Kind = %s, want %s", tt.raw, got.Kind, tt.kind)
		}
	}

	line := ParseLine("Program " + amm + " invoke [2]")
	if line.Program != amm || line.Depth != 2 {
		t.Errorf("Unexpected invoke line %+v", line)
	}
	line = ParseLine("Program " + amm + " consumed 31000 of 200000 compute units")
	if line.ComputeUnits != 31000 || line.ComputeLimit != 200000 {
		t.Errorf("Unexpected consumed line %+v", line)
	}
	line = ParseLine("Program " + amm + " failed: custom program error: 0x26")
	if line.Message != "custom program error: 0x26" {
		t.Errorf("Unexpected failure message %q", line.Message)
	}
	line = ParseLine("Program data: AQID")
	if len(line.Data) != 3 || line.Data[2] != 3 {
		t.Errorf("Unexpected data %v", line.Data)
	}
}

func TestSummarize(t *testing.T) {
	invs := Summarize(swapLogs)
	if len(invs) != 2 {
		t.Fatalf("Expected 2 top-level invocations, got %d", len(invs))
	}
	swap := invs[1]
	if swap.Program != amm || !swap.Succeeded || swap.ComputeUnits != 31000 {
		t.Errorf("Unexpected swap invocation %+v", swap)
	}
	if len(swap.Logs) != 1 || swap.Logs[0] != "ray_log: A4CWmAAAAAAA" {
		t.Errorf("Unexpected swap logs %v", swap.Logs)
	}
	if len(swap.Data) != 1 {
		t.Errorf("Expected program data on the swap invocation")
	}
	if len(swap.Inner) != 1 || swap.Inner[0].Program != tokenP || swap.Inner[0].ComputeUnits != 4645 {
		t.Errorf("Unexpected inner invocations %+v", swap.Inner)
	}
	if TotalComputeUnits(invs) != 31000 {
		t.Errorf("Expected 31000 total, got %d", TotalComputeUnits(invs))
	}

	logs := ProgramLogs(invs, tokenP)
	if len(logs) != 1 || logs[0] != "Instruction: Transfer" {
		t.Errorf("Unexpected token logs %v", logs)
	}
}

func TestFirstError(t *testing.T) {
	invs := Summarize([]string{
		"Program " + amm + " invoke [1]",
		"Program " + tokenP + " invoke [2]",
		"Program " + tokenP + " failed: insufficient funds",
		"Program " + amm + " failed: insufficient funds",
	})
	program, msg := FirstError(invs)
	if program != tokenP || msg != "insufficient funds" {
		t.Errorf("Expected token program failure, got %s: %s", program, msg)
	}
	if invs[0].Succeeded {
		t.Error("Expected outer invocation to be marked failed")
	}

	if p, m := FirstError(Summarize(swapLogs)); p != "" || m != "" {
		t.Errorf("Expected no error, got %s: %s", p, m)
	}
}
