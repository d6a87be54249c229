package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lugondev/go-amm/internal/amm"
	amerrors "github.com/lugondev/go-amm/internal/errors"
	"github.com/lugondev/go-amm/pkg/decoder"
)

// decodedInstruction is the printable form of a decoded AMM payload.
type decodedInstruction struct {
	Program string `json:"program,omitempty" yaml:"program,omitempty"`
	Name    string `json:"name" yaml:"name"`
	Tag     uint8  `json:"tag" yaml:"tag"`
	Params  any    `json:"params" yaml:"params"`
}

func (d decodedInstruction) lines() []string {
	return []string{
		fmt.Sprintf("Instruction: %s (tag %d)", d.Name, d.Tag),
		fmt.Sprintf("  Params: %+v", d.Params),
	}
}

var decodeCmd = &cobra.Command{
	Use:   "decode <data>",
	Short: "Decode an AMM instruction payload",
	Long: `Decode Initialize2, Deposit or SwapBaseIn instruction data. The payload is
hex by default; --encoding accepts hex, base64 or base58.`,
	Example: `  amm decode 09e803000000000000 0100000000000000
  amm decode --encoding base64 CegDAAAAAAAAAQAAAAAAAAA=`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		encoding, _ := cmd.Flags().GetString("encoding")

		var raw string
		for _, a := range args {
			raw += a
		}
		data, err := decoder.ParsePayload(raw, encoding)
		if err != nil {
			return amerrors.DecodeFailed("payload", err)
		}

		ix, err := amm.DecodeInstruction(data)
		if err != nil {
			return err
		}
		out := decodedInstruction{Name: ix.Name, Tag: ix.Tag, Params: ix.Data}
		return app.print(out.lines(), out)
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().String("encoding", decoder.EncodingHex, "payload encoding: hex, base64 or base58")
}
