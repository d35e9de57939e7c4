package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/sortid/clock"
	"github.com/rustyeddy/sortid/config"
	"github.com/rustyeddy/sortid/cuid2"
	"github.com/rustyeddy/sortid/persist"
	"github.com/rustyeddy/sortid/random"
	"github.com/rustyeddy/sortid/ulid"
	"github.com/rustyeddy/sortid/uuid"
)

var genCmd = &cobra.Command{
	Use:   "gen [kind]",
	Short: "Generate ids",
	Long: `Generate one or more ids and print them one per line.

Kinds: ` + strings.Join(config.Kinds, ", ") + `

The kind defaults to generator.kind from the config file. Name-based UUIDs
(uuid3, uuid5) need --name and take their namespace from --namespace.

Examples:
  sortid gen
  sortid gen ulid -n 10
  sortid gen uuid5 --namespace dns --name example.com
  sortid gen uuid7 -c sortid.yaml`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: config.Kinds,
	RunE:      runGen,
}

var (
	genCount     int
	genUpper     bool
	genNamespace string
	genName      string
)

func init() {
	rootCmd.AddCommand(genCmd)

	genCmd.Flags().IntVarP(&genCount, "count", "n", 1, "number of ids to generate")
	genCmd.Flags().BoolVarP(&genUpper, "upper", "u", false, "upper case hex digits for UUIDs")
	genCmd.Flags().StringVar(&genNamespace, "namespace", "dns", "namespace for uuid3 and uuid5: dns, url, oid, x500 or a UUID")
	genCmd.Flags().StringVar(&genName, "name", "", "name for uuid3 and uuid5")
}

func runGen(cmd *cobra.Command, args []string) error {
	g := cfg.Generator
	if len(args) == 1 {
		g.Kind = args[0]
	}
	if cmd.Flags().Changed("count") {
		g.Count = genCount
	}
	if cmd.Flags().Changed("upper") {
		g.Upper = genUpper
	}
	if g.Count <= 0 {
		return fmt.Errorf("count must be positive")
	}

	next, done, err := generator(g)
	if err != nil {
		return err
	}
	defer done()

	out := cmd.OutOrStdout()
	for range g.Count {
		s, err := next()
		if err != nil {
			return fmt.Errorf("generate %s: %w", g.Kind, err)
		}
		if _, err := io.WriteString(out, s+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// generator returns a function producing one id per call, and a function
// releasing whatever it holds.
func generator(g config.GeneratorConfig) (func() (string, error), func(), error) {
	noop := func() {}
	text := func(u uuid.UUID) string {
		if g.Upper {
			return u.Upper()
		}
		return u.String()
	}

	switch g.Kind {
	case "uuid1", "uuid4", "uuid6", "uuid7":
		gen := uuid.NewGenerator()
		done := func() { _ = gen.Close() }
		timed := func(f func() (uuid.UUID, error)) func() (string, error) {
			return func() (string, error) {
				u, err := f()
				return text(u), err
			}
		}
		switch g.Kind {
		case "uuid1":
			return timed(gen.NewV1), done, nil
		case "uuid6":
			return timed(gen.NewV6), done, nil
		case "uuid7":
			return timed(gen.NewV7), done, nil
		}
		return func() (string, error) { return text(gen.NewV4()), nil }, done, nil

	case "uuid3", "uuid5":
		if genName == "" {
			return nil, nil, fmt.Errorf("%s needs --name", g.Kind)
		}
		ns, err := namespace(genNamespace)
		if err != nil {
			return nil, nil, err
		}
		hash := uuid.NewV5
		if g.Kind == "uuid3" {
			hash = uuid.NewV3
		}
		return func() (string, error) { return text(hash(ns, []byte(genName))), nil }, noop, nil

	case "ulid":
		opts, err := cfg.Clock.Options()
		if err != nil {
			return nil, nil, err
		}
		if ulidStore != nil {
			opts = append(opts, clock.WithBackend[persist.ULIDData](ulidStore))
		}
		gen := ulid.NewGenerator(opts...)
		return func() (string, error) {
			u, err := gen.New()
			return u.String(), err
		}, func() { _ = gen.Close() }, nil

	case "nanoid":
		f, err := cfg.NanoID.Format()
		if err != nil {
			return nil, nil, err
		}
		buf := make([]byte, f.Size())
		src := random.Default()
		return func() (string, error) {
			f.Generate(buf, src)
			return f.Encode(buf), nil
		}, noop, nil

	case "cuid2":
		return func() (string, error) { return cuid2.New().String(), nil }, noop, nil
	}
	return nil, nil, fmt.Errorf("unknown kind %q, want one of %s", g.Kind, strings.Join(config.Kinds, ", "))
}

func namespace(s string) (uuid.UUID, error) {
	switch strings.ToLower(s) {
	case "dns":
		return uuid.NamespaceDNS, nil
	case "url":
		return uuid.NamespaceURL, nil
	case "oid":
		return uuid.NamespaceOID, nil
	case "x500":
		return uuid.NamespaceX500, nil
	}
	return uuid.Parse(s)
}
