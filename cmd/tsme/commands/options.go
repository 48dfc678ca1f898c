package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zgpcy/toutsurmoneau-exporter/internal/config"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/logger"
	"github.com/zgpcy/toutsurmoneau-exporter/internal/suez"
)

// verbosityLevel maps the -v count to a log level. Warnings are always shown.
func verbosityLevel(count int) slog.Level {
	switch {
	case count <= 0:
		return slog.LevelWarn
	case count == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// loadConfig reads the config file, then lets flags win. A missing file is
// only an error when --config was given explicitly.
func (o *globalOptions) loadConfig(explicitPath bool) (*config.Config, error) {
	cfg, err := config.Read(o.configPath)
	if errors.Is(err, fs.ErrNotExist) && !explicitPath {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		return nil, err
	}

	if o.username != "" {
		cfg.Username = o.username
	}
	if o.password != "" {
		cfg.Password = o.password
	}
	if o.counterID != "" {
		cfg.CounterID = o.counterID
	}
	if o.provider != "" {
		cfg.Provider = o.provider
	}
	return cfg, nil
}

// newClient resolves the full configuration, prompting for missing
// credentials, and builds a portal client logging to stderr.
func (o *globalOptions) newClient(cmd *cobra.Command) (*suez.Client, *config.Config, error) {
	cfg, err := o.loadConfig(cmd.Flags().Changed("config"))
	if err != nil {
		return nil, nil, err
	}

	if err := newPrompter(cmd.InOrStdin(), cmd.ErrOrStderr()).fill(cfg); err != nil {
		return nil, nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}

	client, err := suez.NewClient(suez.Options{
		Username:  cfg.Username,
		Password:  cfg.Password,
		CounterID: cfg.CounterID,
		Provider:  cfg.Provider,
		BaseURL:   o.baseURL,
		Timeout:   cfg.APITimeoutDuration(),
		Logger:    logger.NewText(cmd.ErrOrStderr(), verbosityLevel(o.verbose)),
	})
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

// prompter asks for credentials that were not given as flags or config
type prompter struct {
	in  *bufio.Reader
	out io.Writer

	// secret reads without echo, nil when input is not a terminal
	secret func() ([]byte, error)
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{in: bufio.NewReader(in), out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		p.secret = func() ([]byte, error) { return term.ReadPassword(fd) }
	}
	return p
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	text, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && text != "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(strings.TrimSuffix(label, ": ")), err)
	}
	return strings.TrimRight(text, "\r\n"), nil
}

func (p *prompter) password(label string) (string, error) {
	if p.secret == nil {
		return p.line(label)
	}
	fmt.Fprint(p.out, label)
	b, err := p.secret()
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// fill prompts for the username and password when they are empty
func (p *prompter) fill(cfg *config.Config) error {
	var err error
	if cfg.Username == "" {
		if cfg.Username, err = p.line("Username: "); err != nil {
			return err
		}
	}
	if cfg.Password == "" {
		if cfg.Password, err = p.password("Password: "); err != nil {
			return err
		}
	}
	return nil
}
