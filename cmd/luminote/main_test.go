package main

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/luminote/ingest"
)

func TestLoadCommandFlags(t *testing.T) {
	app := &cli.App{
		Name: "luminote",
		Commands: []*cli.Command{
			{
				Name:   "load",
				Action: loadCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Required: true,
					},
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Required: true,
					},
					&cli.StringFlag{
						Name: "video",
					},
					&cli.StringFlag{
						Name: "srt",
					},
					&cli.StringFlag{
						Name: "captions-host",
					},
					&cli.BoolFlag{
						Name: "pretty",
					},
				}, aiFlags()...),
			},
		},
	}

	t.Run("db is required", func(t *testing.T) {
		args := []string{"luminote", "load", "--user", "alice", "--video", "https://youtu.be/abc"}
		err := app.Run(args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("user is required", func(t *testing.T) {
		args := []string{"luminote", "load", "--db", "/tmp/test", "--video", "https://youtu.be/abc"}
		err := app.Run(args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "user")
	})

	t.Run("video or srt is required", func(t *testing.T) {
		args := []string{"luminote", "load", "--db", "/tmp/test", "--user", "alice"}
		err := app.Run(args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--video or --srt")
	})

	t.Run("captions-host is required with video", func(t *testing.T) {
		args := []string{"luminote", "load", "--db", "/tmp/test", "--user", "alice", "--video", "https://youtu.be/abc"}
		err := app.Run(args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "captions-host")
	})
}

func TestAIFlags(t *testing.T) {
	flags := aiFlags()
	require.Len(t, flags, 4)

	byName := make(map[string]*cli.StringFlag)
	for _, flag := range flags {
		f, ok := flag.(*cli.StringFlag)
		require.True(t, ok)
		byName[f.Name] = f
	}

	t.Run("generator-host has local default", func(t *testing.T) {
		f := byName["generator-host"]
		require.NotNil(t, f)
		assert.Equal(t, "http://localhost:11434/v1", f.Value)
	})

	t.Run("embedding-host has local default", func(t *testing.T) {
		f := byName["embedding-host"]
		require.NotNil(t, f)
		assert.Equal(t, "http://localhost:11434/v1", f.Value)
	})

	t.Run("model flags have defaults", func(t *testing.T) {
		require.NotNil(t, byName["generator-model"])
		require.NotNil(t, byName["embedding-model"])
		assert.NotEmpty(t, byName["generator-model"].Value)
		assert.NotEmpty(t, byName["embedding-model"].Value)
	})

	t.Run("no flag reads the environment", func(t *testing.T) {
		for name, f := range byName {
			assert.Empty(t, f.EnvVars, name)
		}
	})
}

func TestReindexCommandFlags(t *testing.T) {
	app := &cli.App{
		Name: "luminote",
		Commands: []*cli.Command{
			{
				Name:   "reindex",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Value: 3,
					},
				},
			},
		},
	}

	t.Run("missing db flag fails", func(t *testing.T) {
		args := []string{"luminote", "reindex", "--embedding-model", "test-model"}
		err := app.Run(args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("missing embedding-model flag fails", func(t *testing.T) {
		args := []string{"luminote", "reindex", "--db", "/tmp/test"}
		err := app.Run(args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding-model")
	})

	t.Run("embedding-host has default value", func(t *testing.T) {
		cmd := app.Commands[0]
		var hostFlag *cli.StringFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.StringFlag); ok && f.Name == "embedding-host" {
				hostFlag = f
				break
			}
		}
		require.NotNil(t, hostFlag)
		assert.Equal(t, "http://localhost:11434/v1", hostFlag.Value)
	})

	t.Run("batch-size has default value of 100", func(t *testing.T) {
		cmd := app.Commands[0]
		var batchFlag *cli.IntFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == "batch-size" {
				batchFlag = f
				break
			}
		}
		require.NotNil(t, batchFlag)
		assert.Equal(t, 100, batchFlag.Value)
	})
}

func TestRenderEvent(t *testing.T) {
	t.Run("progress renders percent and message", func(t *testing.T) {
		var buf bytes.Buffer
		renderEvent(&buf, ingest.Event{
			Status:   ingest.StatusProgress,
			Message:  "Loading transcript...",
			Progress: 10,
		})
		assert.Equal(t, "[10%] Loading transcript...\n", buf.String())
	})

	t.Run("completed renders concepts", func(t *testing.T) {
		var buf bytes.Buffer
		renderEvent(&buf, ingest.Event{
			Status:   ingest.StatusCompleted,
			Message:  "Video processed successfully",
			Progress: 100,
			Concepts: []string{"goroutine scheduling basics", "channel select patterns"},
		})
		assert.Equal(t,
			"[100%] Video processed successfully\nConcepts: goroutine scheduling basics, channel select patterns\n",
			buf.String())
	})

	t.Run("error renders without percent", func(t *testing.T) {
		var buf bytes.Buffer
		renderEvent(&buf, ingest.Event{
			Status:  ingest.StatusError,
			Message: "Invalid URL: bad reference",
		})
		assert.Equal(t, "error: Invalid URL: bad reference\n", buf.String())
	})
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected slog.Level
		}{
			{"debug", slog.LevelDebug},
			{"info", slog.LevelInfo},
			{"warn", slog.LevelWarn},
			{"error", slog.LevelError},
		}

		for _, tc := range testCases {
			t.Run(tc.input, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: tc.input,
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc.input})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		testCases := []string{
			"DEBUG",
			"Info",
			"WaRn",
			"ERROR",
		}

		for _, tc := range testCases {
			t.Run(tc, func(t *testing.T) {
				app := &cli.App{
					Name: "test",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "log-level",
							Value: "info",
						},
					},
					Before: setupLogger,
					Action: func(c *cli.Context) error {
						return nil
					},
				}

				err := app.Run([]string{"test", "--log-level", tc})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}

		err := app.Run([]string{"test", "--log-level", "invalid"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
		assert.Contains(t, err.Error(), "invalid")
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "log-level",
					Aliases: []string{"l"},
					Value:   "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				level := c.String("log-level")
				assert.Equal(t, "debug", level)
				return nil
			},
		}

		err := app.Run([]string{"test", "-l", "debug"})
		require.NoError(t, err)
	})
}

func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}
