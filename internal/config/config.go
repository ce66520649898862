// Package config loads deedjoin settings from flags, the environment, .env
// files and an optional YAML config file.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// DEEDJOIN_DUPLICATE_POLICY.
const EnvPrefix = "DEEDJOIN"

// Keys understood in the config file and as DEEDJOIN_* variables.
const (
	KeySingleLinePrefixes = "single_line_prefixes"
	KeyMultiLinePrefixes  = "multi_line_prefixes"
	KeySearchTerms        = "search_terms"
	KeyKMLHasCentroid     = "kml_has_centroid"
	KeyDuplicatePolicy    = "duplicate_policy"
	KeyOutputExt          = "output_ext"
	KeyLogLevel           = "log_level"
	KeyLogFormat          = "log_format"
	KeyLogOutput          = "log_output"
	KeyVerbose            = "verbose"
	KeyQuiet              = "quiet"
)

// Default custom-field prefixes of MBL comment lines.
var (
	DefaultSingleLinePrefixes = []string{"! NOTE=", "! ANNR=", "! ANNS=", "! ASG=", "! resurvey", "! improvements"}
	DefaultMultiLinePrefixes  = []string{"! RR:"}
)

// DefaultSearchTerms are looked up in course comments for the FoundTerms
// column.
var DefaultSearchTerms = []string{
	"ash", "bark", "bay", "beech", "birch", "bush", "cedar", "cherry", "chestnut",
	"currant", "cypress", "dogwood", "elm", "gum", "haw", "hickory", "holly",
	"laurel", "locust", "maple", "mulberry", "myrtle", "oak", "peach", "persimmon",
	"pignut", "pine", "poplar", "sassafras", "scrub", "spice", "tree", "walnut",
	"willow", "wood",
}

// Config is the resolved configuration of one run.
type Config struct {
	ConfigFile string

	SingleLinePrefixes []string
	MultiLinePrefixes  []string
	SearchTerms        []string
	KMLHasCentroid     bool
	DuplicatePolicy    string
	OutputExt          string

	// Logging
	LogLevel  string
	LogFormat string
	LogOutput string
	Verbose   bool
	Quiet     bool
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySingleLinePrefixes, DefaultSingleLinePrefixes)
	v.SetDefault(KeyMultiLinePrefixes, DefaultMultiLinePrefixes)
	v.SetDefault(KeySearchTerms, DefaultSearchTerms)
	v.SetDefault(KeyKMLHasCentroid, true)
	v.SetDefault(KeyDuplicatePolicy, "reject")
	v.SetDefault(KeyOutputExt, ".txt")
	v.SetDefault(KeyLogFormat, "auto")
	v.SetDefault(KeyLogOutput, "stderr")
}

// Load resolves the configuration held by v. Flags must already be bound to
// v; their values take precedence over DEEDJOIN_* variables, which take
// precedence over .env and .env.local, then the config file, then the
// defaults. configFile names an explicit config file; when empty,
// deedjoin.yaml in the working directory or .deedjoin.yaml in the home
// directory is used if present.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	loadEnvFiles()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, configFile); err != nil {
		return nil, err
	}

	return &Config{
		ConfigFile:         v.ConfigFileUsed(),
		SingleLinePrefixes: stringList(v, KeySingleLinePrefixes),
		MultiLinePrefixes:  stringList(v, KeyMultiLinePrefixes),
		SearchTerms:        stringList(v, KeySearchTerms),
		KMLHasCentroid:     v.GetBool(KeyKMLHasCentroid),
		DuplicatePolicy:    v.GetString(KeyDuplicatePolicy),
		OutputExt:          v.GetString(KeyOutputExt),
		LogLevel:           v.GetString(KeyLogLevel),
		LogFormat:          v.GetString(KeyLogFormat),
		LogOutput:          v.GetString(KeyLogOutput),
		Verbose:            v.GetBool(KeyVerbose),
		Quiet:              v.GetBool(KeyQuiet),
	}, nil
}

func readConfigFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "reading config %s", configFile)
		}
		return nil
	}

	v.SetConfigName("deedjoin")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err == nil {
		return nil
	} else if !isNotFound(err) {
		return errors.Wrap(err, "reading config")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	v.SetConfigName(".deedjoin")
	v.AddConfigPath(home)
	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return errors.Wrap(err, "reading config")
	}
	return nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound)
}

// loadEnvFiles loads .env.local then .env. A variable keeps the first value
// it was given, so the process environment wins over both files and
// .env.local wins over .env.
func loadEnvFiles() {
	for _, name := range []string{".env.local", ".env"} {
		_ = godotenv.Load(name)
	}
}

// stringList reads a list key. A plain string, as given by an environment
// variable, is split on commas so prefixes keep their inner spaces.
func stringList(v *viper.Viper, key string) []string {
	s, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringSlice(key)
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
