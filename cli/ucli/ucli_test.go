package ucli

import (
	"bytes"
	"io"
	"testing"

	"github.com/sctester/scenario/cli"
	"github.com/stretchr/testify/require"
	urfave "github.com/urfave/cli/v2"
)

func TestBuild(t *testing.T) {
	builder := NewBuilder("test", WithWriter(io.Discard))
	app := builder.Build().(*urfave.App)

	require.Equal(t, "test", app.Name)
	require.Equal(t, io.Discard, app.Writer)

	err := app.Run([]string{"test"})
	require.NoError(t, err)
}

func TestBuild_Options(t *testing.T) {
	out := new(bytes.Buffer)

	builder := NewBuilder("test",
		WithUsage("test usage"),
		WithVersion("1.2.3"),
		WithWriter(out),
		WithFlags(cli.StringFlag{Name: "global"}))

	app := builder.Build().(*urfave.App)
	require.Equal(t, "test usage", app.Usage)
	require.Equal(t, "1.2.3", app.Version)
	require.Len(t, app.Flags, 3)

	err := app.Run([]string{"test", "--version"})
	require.NoError(t, err)
	require.Equal(t, "test version 1.2.3\n", out.String())
}

func TestSetCommand(t *testing.T) {
	builder := NewBuilder("test")

	builder.SetCommand("first")
	builder.SetCommand("second")

	app := builder.Build().(*urfave.App)

	require.Len(t, app.Commands, 3)

	require.Equal(t, "first", app.Commands[0].Name)
	require.Equal(t, "second", app.Commands[1].Name)
	require.Equal(t, "help", app.Commands[2].Name)
}

func TestCommandBuilder(t *testing.T) {
	builder := NewBuilder("test")
	cmd := builder.SetCommand("first")

	fakeAction := func(flags cli.Flags) error {
		return nil
	}

	cmd.SetAction(fakeAction)
	cmd.SetDescription("first action")
	cmd.SetFlags(cli.StringFlag{
		Name:     "arg",
		Usage:    "this is a test arg",
		Required: true,
		Value:    "default",
	})
	cmd.SetSubCommand("second")

	require.Len(t, builder.commands, 1)
	require.Len(t, builder.flags, 0)

	cmd2 := builder.commands[0]
	require.Equal(t, "first action", cmd2.description)
	require.Len(t, cmd2.flags, 1)
	require.Len(t, cmd2.subcommands, 1)
}

func TestRun_Flags(t *testing.T) {
	builder := NewBuilder("test", WithWriter(io.Discard))

	var file, name string
	var limit int
	var canonical bool

	cmd := builder.SetCommand("store")
	sub := cmd.SetSubCommand("list")
	sub.SetFlags(
		cli.PathFlag{Name: "file"},
		cli.StringFlag{Name: "name", Value: "alice"},
		cli.IntFlag{Name: "limit", Value: 10},
		cli.BoolFlag{Name: "canonical"},
	)
	sub.SetAction(func(flags cli.Flags) error {
		file = flags.Path("file")
		name = flags.String("name")
		limit = flags.Int("limit")
		canonical = flags.Bool("canonical")
		return nil
	})

	err := builder.Build().Run([]string{"test", "store", "list",
		"--file", "suite.json", "--limit", "2", "--canonical"})
	require.NoError(t, err)
	require.Equal(t, "suite.json", file)
	require.Equal(t, "alice", name)
	require.Equal(t, 2, limit)
	require.True(t, canonical)
}

func TestBuildFlags(t *testing.T) {
	in := []cli.Flag{
		cli.StringFlag{
			Name:     "name1",
			Usage:    "usage1",
			Required: true,
			Value:    "value1",
		},
		cli.PathFlag{
			Name:     "name2",
			Usage:    "usage2",
			Required: true,
			Value:    "suite.json",
		},
		cli.IntFlag{
			Name:     "name3",
			Usage:    "usage3",
			Required: true,
			Value:    1,
		},
		cli.BoolFlag{
			Name:     "name4",
			Usage:    "usage4",
			Required: true,
			Value:    true,
		},
	}

	out := buildFlags(in)
	require.Len(t, out, 4)

	require.Equal(t, "name1", out[0].Names()[0])
	require.Equal(t, "name2", out[1].Names()[0])
	require.Equal(t, "name3", out[2].Names()[0])
	require.Equal(t, "name4", out[3].Names()[0])
}

func TestBuildFlags_Panic(t *testing.T) {
	defer func() {
		r := recover()
		require.Equal(t, "flag type '<nil>' not supported", r)
	}()

	buildFlags([]cli.Flag{nil})
}

func TestMakeAction(t *testing.T) {
	res := makeAction(nil)
	require.Nil(t, res)

	isCalled := false
	fakeAction := func(flags cli.Flags) error {
		require.Nil(t, flags)
		isCalled = true
		return nil
	}

	res = makeAction(fakeAction)
	require.NotNil(t, res)

	out := res(nil)
	require.NoError(t, out)
	require.True(t, isCalled)
}
