package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/sortid/cuid2"
	"github.com/rustyeddy/sortid/ulid"
	"github.com/rustyeddy/sortid/uuid"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <id>...",
	Short: "Decode ids",
	Long: `Decode ids and print their type, binary value and any embedded time.

The type is recognised from the text length: 36 (or 38 braced) for UUIDs,
26 for ULIDs, 24 for Cuid2 and the configured nanoid length.

Examples:
  sortid inspect 017f22e2-79b0-7cc3-98c4-dc0c0c07398f
  sortid inspect 01ARYZ6S41YYYYYYYYYYYYYYYY`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, s := range args {
		if err := inspect(out, s); err != nil {
			return err
		}
	}
	return nil
}

func inspect(out io.Writer, s string) error {
	switch len(s) {
	case 36, 38:
		u, err := uuid.Parse(s)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n  type:    uuid\n  version: %d\n  variant: %s\n  hex:     %s\n",
			u, u.Version(), variantName(u.Variant()), hex.EncodeToString(u[:]))
		if ts, ok := u.Time(); ok {
			fmt.Fprintf(out, "  time:    %s\n  clock:   %d\n", ts.UTC().Format(time.RFC3339Nano), u.ClockSequence())
			if v := u.Version(); v == 1 || v == 6 {
				n := u.Node()
				fmt.Fprintf(out, "  node:    %s\n", hex.EncodeToString(n[:]))
			}
		}
		return nil

	case ulid.EncodedSize:
		u, err := ulid.Parse(s)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n  type:    ulid\n  hex:     %s\n  time:    %s\n",
			u, hex.EncodeToString(u[:]), u.Time().UTC().Format(time.RFC3339Nano))
		return nil

	case cuid2.EncodedSize:
		id, err := cuid2.Parse(s)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s\n  type:    cuid2\n  hex:     %s\n", id, hex.EncodeToString(id[:]))
		return nil
	}

	f, err := cfg.NanoID.Format()
	if err != nil {
		return err
	}
	if len(s) != f.Len() {
		return fmt.Errorf("inspect %q: unrecognised id", s)
	}
	buf := make([]byte, f.Size())
	if err := f.Decode(buf, s); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n  type:    nanoid\n  hex:     %s\n", s, hex.EncodeToString(buf))
	return nil
}

func variantName(v uuid.Variant) string {
	switch v {
	case uuid.VariantNCS:
		return "ncs"
	case uuid.VariantRFC:
		return "rfc9562"
	case uuid.VariantMicrosoft:
		return "microsoft"
	}
	return "future"
}
