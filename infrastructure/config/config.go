package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/RiseVision/rise-node/domain/consensus/utils/keys"
	"github.com/RiseVision/rise-node/domain/dposconfig"
	"github.com/RiseVision/rise-node/domain/miningmanager/transactionpool"
	"github.com/RiseVision/rise-node/infrastructure/logger"
	"github.com/RiseVision/rise-node/version"
	"github.com/btcsuite/btcutil"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

const (
	defaultConfigFilename = "rised.conf"
	defaultDataDirname    = "data"
	defaultLogLevel       = "info"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "rised.log"
	defaultErrLogFilename = "rised_err.log"

	defaultMaxTxsPerQueue        = 1000
	defaultBundleReleaseInterval = 5 * time.Second
	defaultBundleReleaseLimit    = 25
	defaultExpiryScanInterval    = 30 * time.Second
)

var (
	// DefaultAppDir is the default home directory for rised.
	DefaultAppDir = btcutil.AppDataDir("rised", false)

	defaultConfigFile = filepath.Join(DefaultAppDir, defaultConfigFilename)
	defaultDataDir    = filepath.Join(DefaultAppDir, defaultDataDirname)
	defaultLogDir     = filepath.Join(DefaultAppDir, defaultLogDirname)
)

// Flags defines the configuration options for rised.
//
// See loadConfig for details on the configuration load process.
type Flags struct {
	ShowVersion           bool          `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile            string        `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir               string        `short:"b" long:"datadir" description:"Directory to store data"`
	LogDir                string        `long:"logdir" description:"Directory to log output"`
	LogLevel              string        `short:"d" long:"loglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
	ForgingSecrets        []string      `long:"forgingsecret" description:"Secret of a delegate to forge with. May be repeated"`
	ForgingSecretPrompt   bool          `long:"forgingsecretprompt" description:"Read a forging secret from the terminal at startup"`
	SnapshotRound         uint64        `long:"snapshotround" description:"Verify the ledger up to the end of this round, then stop"`
	MaxTxsPerQueue        int           `long:"maxtxsperqueue" description:"Maximum number of transactions in each transaction pool queue"`
	BundleReleaseInterval time.Duration `long:"bundlereleaseinterval" description:"How often bundled transactions are released into the pool"`
	BundleReleaseLimit    int           `long:"bundlereleaselimit" description:"Maximum number of bundled transactions released at once"`
	DefaultTxExpiry       time.Duration `long:"defaulttxexpiry" description:"How long a transaction may stay in the pool. Defaults to the network's unconfirmed transaction timeout"`
	ExpiryScanInterval    time.Duration `long:"expiryscaninterval" description:"How often the pool is scanned for expired transactions"`
	Profile               string        `long:"profile" description:"Enable HTTP profiling on given port -- NOTE port must be between 1024 and 65535"`
	NetworkFlags
}

// Config defines the configuration options for rised.
//
// See loadConfig for details on the configuration load process.
type Config struct {
	*Flags
	ForgingKeyPairs []*keys.KeyPair
}

// readPassword reads a line from the terminal without echoing it
var readPassword = readPasswordFromTerminal

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(DefaultAppDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but they variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

func defaultFlags() *Flags {
	return &Flags{
		ConfigFile:            defaultConfigFile,
		DataDir:               defaultDataDir,
		LogDir:                defaultLogDir,
		LogLevel:              defaultLogLevel,
		MaxTxsPerQueue:        defaultMaxTxsPerQueue,
		BundleReleaseInterval: defaultBundleReleaseInterval,
		BundleReleaseLimit:    defaultBundleReleaseLimit,
		ExpiryScanInterval:    defaultExpiryScanInterval,
	}
}

// LoadConfig initializes and parses the config using a config file and command
// line options.
func LoadConfig() (*Config, error) {
	return loadConfig(os.Args[1:])
}

// loadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
// 	1) Start with a default config with sane settings
// 	2) Pre-parse the command line to check for an alternative config file
// 	3) Load configuration file overwriting defaults with any specified options
// 	4) Parse CLI options and overwrite/add any specified options
//
// The above results in rised functioning properly without any config settings
// while still allowing the user to override settings with config files and
// command line options. Command line options always take precedence.
func loadConfig(args []string) (*Config, error) {
	cfgFlags := defaultFlags()

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.
	preCfg := *cfgFlags
	preParser := flags.NewParser(&preCfg, flags.HelpFlag)
	_, err := preParser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if ok := errors.As(err, &flagsErr); ok && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			return nil, err
		}
	}

	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)
	if preCfg.ShowVersion {
		fmt.Println(appName, "version", version.Version())
		os.Exit(0)
	}

	// Load additional config from file.
	parser := flags.NewParser(cfgFlags, flags.Default)
	cfg := &Config{
		Flags: cfgFlags,
	}
	err = flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
	if err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) || preCfg.ConfigFile != defaultConfigFile {
			fmt.Fprintf(os.Stderr, "Error parsing config file: %s\n", err)
			fmt.Fprintln(os.Stderr, usageMessage)
			return nil, err
		}
	}

	// Parse command line options again to ensure they take precedence.
	_, err = parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if ok := errors.As(err, &flagsErr); !ok || flagsErr.Type != flags.ErrHelp {
			fmt.Fprintln(os.Stderr, usageMessage)
		}
		return nil, err
	}

	err = cfg.ResolveNetwork(parser)
	if err != nil {
		return nil, err
	}

	cfg.DataDir = filepath.Join(cleanAndExpandPath(cfg.DataDir), cfg.NetParams().Name)
	cfg.LogDir = filepath.Join(cleanAndExpandPath(cfg.LogDir), cfg.NetParams().Name)

	// Special show command to list supported subsystems and exit.
	if cfg.LogLevel == "show" {
		fmt.Println("Supported subsystems", logger.SupportedSubsystems())
		os.Exit(0)
	}

	// Parse, validate, and set debug log level(s).
	err = logger.ParseAndSetLogLevels(cfg.LogLevel)
	if err != nil {
		err := errors.Errorf("failed to parse loglevel: %s", err)
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, err
	}

	// Validate profile port number
	if cfg.Profile != "" {
		profilePort, err := strconv.Atoi(cfg.Profile)
		if err != nil || profilePort < 1024 || profilePort > 65535 {
			err := errors.Errorf("the profile port must be between 1024 and 65535, got %s", cfg.Profile)
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintln(os.Stderr, usageMessage)
			return nil, err
		}
	}

	err = cfg.validatePoolFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, err
	}

	err = cfg.resolveForgingKeyPairs()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, err
	}

	return cfg, nil
}

func (cfg *Config) validatePoolFlags() error {
	if cfg.MaxTxsPerQueue <= 0 {
		return errors.Errorf("maxtxsperqueue must be positive, got %d", cfg.MaxTxsPerQueue)
	}
	if cfg.BundleReleaseLimit <= 0 {
		return errors.Errorf("bundlereleaselimit must be positive, got %d", cfg.BundleReleaseLimit)
	}
	if cfg.BundleReleaseInterval <= 0 {
		return errors.Errorf("bundlereleaseinterval must be positive, got %s", cfg.BundleReleaseInterval)
	}
	if cfg.ExpiryScanInterval <= 0 {
		return errors.Errorf("expiryscaninterval must be positive, got %s", cfg.ExpiryScanInterval)
	}
	if cfg.DefaultTxExpiry < 0 {
		return errors.Errorf("defaulttxexpiry cannot be negative, got %s", cfg.DefaultTxExpiry)
	}
	return nil
}

// resolveForgingKeyPairs derives the forging key pairs from the configured
// secrets. Mainnet secrets must be BIP39 mnemonics.
func (cfg *Config) resolveForgingKeyPairs() error {
	secrets := cfg.ForgingSecrets
	if cfg.ForgingSecretPrompt {
		secret, err := readPassword("Enter forging secret: ")
		if err != nil {
			return errors.Wrap(err, "failed reading the forging secret")
		}
		secrets = append(secrets, secret)
	}

	seen := make(map[string]struct{}, len(secrets))
	for _, secret := range secrets {
		secret = strings.TrimSpace(secret)
		if secret == "" {
			return errors.New("forging secrets cannot be empty")
		}
		if cfg.NetParams().Name == dposconfig.MainnetParams.Name {
			err := keys.ValidateMnemonic(secret)
			if err != nil {
				return errors.Wrap(err, "invalid forging secret")
			}
		}

		keyPair := keys.KeyPairFromSecret(secret)
		if _, ok := seen[keyPair.PublicKeyHex()]; ok {
			continue
		}
		seen[keyPair.PublicKeyHex()] = struct{}{}
		cfg.ForgingKeyPairs = append(cfg.ForgingKeyPairs, keyPair)
	}
	return nil
}

// TransactionPoolConfig returns the transaction pool configuration for the
// active network, with the pool flags applied
func (cfg *Config) TransactionPoolConfig() *transactionpool.Config {
	poolConfig := transactionpool.DefaultConfig(cfg.NetParams())
	poolConfig.MaxTxsPerQueue = cfg.MaxTxsPerQueue
	poolConfig.BundleReleaseInterval = cfg.BundleReleaseInterval
	poolConfig.BundleReleaseLimit = cfg.BundleReleaseLimit
	poolConfig.ExpiryScanInterval = cfg.ExpiryScanInterval
	if cfg.DefaultTxExpiry > 0 {
		poolConfig.DefaultExpiry = cfg.DefaultTxExpiry
	}
	return poolConfig
}

// LogFile returns the path of the main log file
func (cfg *Config) LogFile() string {
	return filepath.Join(cfg.LogDir, defaultLogFilename)
}

// ErrLogFile returns the path of the log file holding warnings and errors
func (cfg *Config) ErrLogFile() string {
	return filepath.Join(cfg.LogDir, defaultErrLogFilename)
}
