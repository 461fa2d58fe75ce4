package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/sctester/scenario/cli"
	"github.com/sctester/scenario/config"
	"github.com/sctester/scenario/serde"
	"github.com/sctester/scenario/store/kv"
	"github.com/sctester/scenario/suite"
	"github.com/sctester/scenario/suite/loader"
	"github.com/sctester/scenario/suite/store"
	"golang.org/x/xerrors"
)

type commands struct {
	out    io.Writer
	cfg    config.Config
	ctx    serde.Context
	loader loader.Loader
}

func (c commands) register(builder cli.Builder) {
	fileFlag := cli.PathFlag{
		Name:     "file",
		Usage:    "path to the suite file (.json, .yaml or .yml)",
		Required: true,
	}

	dbFlag := cli.PathFlag{
		Name:  "db",
		Usage: "path to the suite library",
		Value: c.cfg.DB,
	}

	nameFlag := cli.StringFlag{
		Name:     "name",
		Usage:    "name of the suite in the library",
		Required: true,
	}

	cmd := builder.SetCommand("validate")
	cmd.SetDescription("check that a suite file is well-formed")
	cmd.SetFlags(fileFlag)
	cmd.SetAction(c.validate)

	cmd = builder.SetCommand("encode")
	cmd.SetDescription("print the wire JSON of a suite")
	cmd.SetFlags(fileFlag, cli.BoolFlag{
		Name:  "canonical",
		Usage: "print the canonical form (RFC 8785)",
	})
	cmd.SetAction(c.encode)

	cmd = builder.SetCommand("fingerprint")
	cmd.SetDescription("print the digest of a suite")
	cmd.SetFlags(fileFlag)
	cmd.SetAction(c.fingerprint)

	cmd = builder.SetCommand("results")
	cmd.SetDescription("pair the results of the engine with the actions of a suite")
	cmd.SetFlags(fileFlag, cli.PathFlag{
		Name:     "results",
		Usage:    "path to the JSON results reported by the engine",
		Required: true,
	})
	cmd.SetAction(c.results)

	cmd = builder.SetCommand("store")
	cmd.SetDescription("manage the library of suites")

	sub := cmd.SetSubCommand("save")
	sub.SetDescription("save a suite file under a name")
	sub.SetFlags(dbFlag, nameFlag, fileFlag)
	sub.SetAction(c.storeSave)

	sub = cmd.SetSubCommand("get")
	sub.SetDescription("print the wire JSON of a saved suite")
	sub.SetFlags(dbFlag, nameFlag)
	sub.SetAction(c.storeGet)

	sub = cmd.SetSubCommand("list")
	sub.SetDescription("list the saved suites")
	sub.SetFlags(dbFlag, cli.IntFlag{
		Name:  "limit",
		Usage: "maximum number of suites to list, or 0 for all",
	}, cli.StringFlag{
		Name:  "prefix",
		Usage: "only list the suites whose name starts with the prefix",
	})
	sub.SetAction(c.storeList)

	sub = cmd.SetSubCommand("delete")
	sub.SetDescription("delete a saved suite")
	sub.SetFlags(dbFlag, nameFlag)
	sub.SetAction(c.storeDelete)
}

func (c commands) validate(flags cli.Flags) error {
	path := flags.Path("file")

	s, err := c.load(path)
	if err != nil {
		return err
	}

	protocol := s.GetProtocol()
	if protocol == "" {
		protocol = "any"
	}

	fmt.Fprintf(c.out, "%s: %d action(s), protocol %s\n", path, s.Len(), protocol)

	return nil
}

func (c commands) encode(flags cli.Flags) error {
	s, err := c.load(flags.Path("file"))
	if err != nil {
		return err
	}

	if flags.Bool("canonical") {
		err = s.Fingerprint(c.ctx, c.out)
		if err != nil {
			return xerrors.Errorf("failed to canonicalize: %v", err)
		}
	} else {
		data, err := s.Serialize(c.ctx)
		if err != nil {
			return xerrors.Errorf("failed to serialize: %v", err)
		}

		_, err = c.out.Write(data)
		if err != nil {
			return xerrors.Errorf("couldn't write: %v", err)
		}
	}

	fmt.Fprintln(c.out)

	return nil
}

func (c commands) fingerprint(flags cli.Flags) error {
	s, err := c.load(flags.Path("file"))
	if err != nil {
		return err
	}

	digest, err := suite.Digest(c.ctx, s)
	if err != nil {
		return xerrors.Errorf("failed to compute digest: %v", err)
	}

	fmt.Fprintln(c.out, hex.EncodeToString(digest))

	return nil
}

func (c commands) results(flags cli.Flags) error {
	s, err := c.load(flags.Path("file"))
	if err != nil {
		return err
	}

	data, err := os.ReadFile(flags.Path("results"))
	if err != nil {
		return xerrors.Errorf("failed to read results: %v", err)
	}

	results, err := suite.NewResultsFactory().ResultsOf(c.ctx, data)
	if err != nil {
		return xerrors.Errorf("failed to decode results: %w", err)
	}

	report, err := suite.Correlate(s, results)
	if err != nil {
		return xerrors.Errorf("failed to correlate: %w", err)
	}

	table := tablewriter.NewWriter(c.out)
	table.SetHeader([]string{"#", "Kind", "Status", "Result"})

	for _, outcome := range report.GetOutcomes() {
		result := ""
		if outcome.Result.GetResult() != nil {
			raw, err := json.Marshal(outcome.Result.GetResult())
			if err != nil {
				return xerrors.Errorf("failed to marshal result #%d: %v", outcome.Index, err)
			}

			result = string(raw)
		}

		table.Append([]string{
			strconv.Itoa(outcome.Index),
			string(outcome.Action.GetKind()),
			string(outcome.Result.GetStatus()),
			result,
		})
	}

	table.Render()

	fmt.Fprintf(c.out, "passed: %d, failed: %d\n", report.Passed(), report.Failed())

	if !report.Succeeded() {
		return xerrors.Errorf("%d action(s) failed", report.Failed())
	}

	return nil
}

func (c commands) storeSave(flags cli.Flags) error {
	s, err := c.load(flags.Path("file"))
	if err != nil {
		return err
	}

	return c.withStore(flags, func(lib store.Store) error {
		rec, err := lib.Save(flags.String("name"), s)
		if err != nil {
			return err
		}

		fmt.Fprintf(c.out, "%s %s %x\n", rec.Name, rec.ID, rec.Digest)

		return nil
	})
}

func (c commands) storeGet(flags cli.Flags) error {
	return c.withStore(flags, func(lib store.Store) error {
		rec, err := lib.Get(flags.String("name"))
		if err != nil {
			return err
		}

		data, err := rec.Suite.Serialize(c.ctx)
		if err != nil {
			return xerrors.Errorf("failed to serialize: %v", err)
		}

		_, err = c.out.Write(data)
		if err != nil {
			return xerrors.Errorf("couldn't write: %v", err)
		}

		fmt.Fprintln(c.out)

		return nil
	})
}

func (c commands) storeList(flags cli.Flags) error {
	return c.withStore(flags, func(lib store.Store) error {
		records, err := lib.Find(flags.String("prefix"))
		if err != nil {
			return err
		}

		limit := flags.Int("limit")
		if limit > 0 && limit < len(records) {
			records = records[:limit]
		}

		table := tablewriter.NewWriter(c.out)
		table.SetHeader([]string{"Name", "ID", "Saved", "Actions", "Digest"})

		for _, rec := range records {
			table.Append([]string{
				rec.Name,
				rec.ID.String(),
				rec.ID.Time().UTC().Format(time.RFC3339),
				strconv.Itoa(rec.Suite.Len()),
				hex.EncodeToString(rec.Digest)[:16],
			})
		}

		table.Render()

		return nil
	})
}

func (c commands) storeDelete(flags cli.Flags) error {
	return c.withStore(flags, func(lib store.Store) error {
		return lib.Delete(flags.String("name"))
	})
}

// load reads the suite file and pins the protocol of the configuration when the
// suite does not set one.
func (c commands) load(path string) (suite.TestSuite, error) {
	s, err := c.loader.Load(path)
	if err != nil {
		return suite.TestSuite{}, xerrors.Errorf("failed to load suite: %w", err)
	}

	if s.GetProtocol() == "" && c.cfg.Protocol != "" {
		s = suite.NewTestSuite(suite.WithProtocol(c.cfg.Protocol), suite.WithActions(s.GetActions()...))
	}

	return s, nil
}

func (c commands) withStore(flags cli.Flags, fn func(store.Store) error) error {
	db, err := kv.New(flags.Path("db"))
	if err != nil {
		return xerrors.Errorf("failed to open library: %v", err)
	}

	defer db.Close()

	return fn(store.NewStore(db, c.ctx))
}
