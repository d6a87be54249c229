// Package log parses the log lines a node returns with a transaction into
// per-instruction invocations: which program ran, what it logged, how many
// compute units it consumed and whether it failed.
//
//	invocations := log.Summarize(meta.LogMessages)
//	for _, inv := range invocations {
//	    fmt.Println(inv.Program, inv.ComputeUnits, inv.Error)
//	}
package log

import (
	"encoding/base64"
	"regexp"
	"strconv"
)

// Kind classifies a log line.
type Kind int

const (
	KindOther Kind = iota
	KindInvoke
	KindSuccess
	KindFailed
	KindData
	KindLog
	KindConsumed
)

func (k Kind) String() string {
	switch k {
	case KindInvoke:
		return "invoke"
	case KindSuccess:
		return "success"
	case KindFailed:
		return "failed"
	case KindData:
		return "data"
	case KindLog:
		return "log"
	case KindConsumed:
		return "consumed"
	default:
		return "other"
	}
}

// Line is one parsed log line.
type Line struct {
	Kind    Kind
	Program string
	// Depth is the 1-based invoke depth of KindInvoke lines.
	Depth int
	// Message is the text of KindLog lines and the error of KindFailed lines.
	Message      string
	Data         []byte
	ComputeUnits uint64
	ComputeLimit uint64
	Raw          string
}

var (
	invokeRe   = regexp.MustCompile(`^Program (\S+) invoke \[(\d+)\]$`)
	successRe  = regexp.MustCompile(`^Program (\S+) success$`)
	failedRe   = regexp.MustCompile(`^Program (\S+) failed: (.*)$`)
	dataRe     = regexp.MustCompile(`^Program data: (.+)$`)
	logRe      = regexp.MustCompile(`^Program log: (.*)$`)
	consumedRe = regexp.MustCompile(`^Program (\S+) consumed (\d+) of (\d+) compute units$`)
)

// ParseLine classifies one log line. Unrecognized lines are KindOther.
func ParseLine(raw string) Line {
	line := Line{Kind: KindOther, Raw: raw}

	if m := invokeRe.FindStringSubmatch(raw); m != nil {
		line.Kind = KindInvoke
		line.Program = m[1]
		line.Depth, _ = strconv.Atoi(m[2])
		return line
	}
	if m := successRe.FindStringSubmatch(raw); m != nil {
		line.Kind = KindSuccess
		line.Program = m[1]
		return line
	}
	if m := failedRe.FindStringSubmatch(raw); m != nil {
		line.Kind = KindFailed
		line.Program = m[1]
		line.Message = m[2]
		return line
	}
	if m := consumedRe.FindStringSubmatch(raw); m != nil {
		line.Kind = KindConsumed
		line.Program = m[1]
		line.ComputeUnits, _ = strconv.ParseUint(m[2], 10, 64)
		line.ComputeLimit, _ = strconv.ParseUint(m[3], 10, 64)
		return line
	}
	if m := dataRe.FindStringSubmatch(raw); m != nil {
		line.Kind = KindData
		if decoded, err := base64.StdEncoding.DecodeString(m[1]); err == nil {
			line.Data = decoded
		}
		return line
	}
	if m := logRe.FindStringSubmatch(raw); m != nil {
		line.Kind = KindLog
		line.Message = m[1]
		return line
	}
	return line
}

// Invocation is one program invocation and the invocations it made.
type Invocation struct {
	Program      string        `json:"program" yaml:"program"`
	Depth        int           `json:"depth" yaml:"depth"`
	Logs         []string      `json:"logs,omitempty" yaml:"logs,omitempty"`
	Data         [][]byte      `json:"data,omitempty" yaml:"data,omitempty"`
	ComputeUnits uint64        `json:"compute_units" yaml:"compute_units"`
	Succeeded    bool          `json:"succeeded" yaml:"succeeded"`
	Error        string        `json:"error,omitempty" yaml:"error,omitempty"`
	Inner        []*Invocation `json:"inner,omitempty" yaml:"inner,omitempty"`
}

// Summarize folds log lines into the top-level invocations of a
// transaction. Logs, data and compute units are attached to the innermost
// open invocation.
func Summarize(lines []string) []*Invocation {
	var (
		top   []*Invocation
		stack []*Invocation
	)
	current := func() *Invocation {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}

	for _, raw := range lines {
		line := ParseLine(raw)
		switch line.Kind {
		case KindInvoke:
			inv := &Invocation{Program: line.Program, Depth: line.Depth}
			if parent := current(); parent != nil {
				parent.Inner = append(parent.Inner, inv)
			} else {
				top = append(top, inv)
			}
			stack = append(stack, inv)
		case KindLog:
			if inv := current(); inv != nil {
				inv.Logs = append(inv.Logs, line.Message)
			}
		case KindData:
			if inv := current(); inv != nil && line.Data != nil {
				inv.Data = append(inv.Data, line.Data)
			}
		case KindConsumed:
			if inv := current(); inv != nil && inv.Program == line.Program {
				inv.ComputeUnits = line.ComputeUnits
			}
		case KindSuccess, KindFailed:
			inv := current()
			if inv == nil {
				continue
			}
			inv.Succeeded = line.Kind == KindSuccess
			inv.Error = line.Message
			stack = stack[:len(stack)-1]
		}
	}
	return top
}

// TotalComputeUnits sums the compute units of top-level invocations, which
// already include their inner invocations.
func TotalComputeUnits(invocations []*Invocation) uint64 {
	var total uint64
	for _, inv := range invocations {
		total += inv.ComputeUnits
	}
	return total
}

// ProgramLogs returns every "Program log:" message emitted while program was
// the innermost invocation.
func ProgramLogs(invocations []*Invocation, program string) []string {
	var logs []string
	var walk func([]*Invocation)
	walk = func(list []*Invocation) {
		for _, inv := range list {
			if inv.Program == program {
				logs = append(logs, inv.Logs...)
			}
			walk(inv.Inner)
		}
	}
	walk(invocations)
	return logs
}

// FirstError returns the error of the first failed invocation, depth first.
func FirstError(invocations []*Invocation) (program, message string) {
	for _, inv := range invocations {
		if p, m := FirstError(inv.Inner); m != "" {
			return p, m
		}
		if inv.Error != "" {
			return inv.Program, inv.Error
		}
	}
	return "", ""
}
