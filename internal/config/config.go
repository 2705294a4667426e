// Package config builds the run Settings once at startup from flags, the
// optional /config files and the process environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pushtolive/ptl/internal/auth"
	"github.com/pushtolive/ptl/internal/constants"
	"github.com/pushtolive/ptl/internal/manifest"
	"github.com/pushtolive/ptl/pkg/ptl"
)

// Flag keys bound into viper by the commands package.
const (
	KeyConfigDir = "config-dir"
	KeyEndpoint  = "endpoint"
	KeyManifest  = "manifest"
	KeyDebug     = "debug"
	KeyVerbose   = "verbose"
	KeyOutput    = "output"
	KeyNoColor   = "no-color"
	KeyRetryMax  = "retry-max"
	KeyTimeout   = "timeout"
)

// Keys read from the /config/config file.
const (
	fileKeyEndpoint  = "endpoint"
	fileKeyCurlDebug = "curl_debug"
)

// Settings is everything a run needs, resolved once.
type Settings struct {
	Endpoint          string
	Debug             bool
	Verbose           bool
	Output            string
	NoColor           bool
	RetryMax          int
	Timeout           time.Duration
	ConfigFile        string
	Credentials       ptl.Credentials
	CredentialsSource string
	Trigger           Trigger
	ManifestPaths     []string
}

// ClientConfig converts the settings for client construction.
func (s *Settings) ClientConfig(logger ptl.Logger, userAgent string) *ptl.Config {
	return &ptl.Config{
		Endpoint:    s.Endpoint,
		Credentials: s.Credentials,
		HTTPTimeout: s.Timeout,
		RetryMax:    s.RetryMax,
		Debug:       s.Debug,
		Logger:      logger,
		UserAgent:   userAgent,
	}
}

// Loader resolves Settings. Viper carries the bound command flags; Getenv
// defaults to os.Getenv.
type Loader struct {
	Viper  *viper.Viper
	Getenv func(string) string
}

// Load resolves settings without credentials, for commands that never
// call the API.
func (l Loader) Load() (*Settings, error) {
	v, getenv := l.flags(), l.env()

	file, configFile, err := readKeyValueFile(filepath.Join(l.configDir(), constants.ConfigFileName))
	if err != nil {
		return nil, err
	}

	output := v.GetString(KeyOutput)
	if output == "" {
		output = constants.DefaultOutput
	}

	trigger := TriggerFromEnv(getenv)

	settings := &Settings{
		Endpoint:      resolveEndpoint(v, file, getenv),
		Debug:         v.GetBool(KeyDebug) || strings.EqualFold(file.GetString(fileKeyCurlDebug), constants.CurlDebugOn),
		Verbose:       v.GetBool(KeyVerbose),
		Output:        output,
		NoColor:       v.GetBool(KeyNoColor),
		RetryMax:      v.GetInt(KeyRetryMax),
		Timeout:       v.GetDuration(KeyTimeout),
		ConfigFile:    configFile,
		Trigger:       trigger,
		ManifestPaths: manifest.CandidatePaths(trigger.Workspace, v.GetString(KeyManifest)),
	}

	return settings, nil
}

// LoadWithCredentials resolves settings and credentials. The credentials
// file takes priority over the environment; finding neither is
// ptl.ErrMissingCredentials.
func (l Loader) LoadWithCredentials() (*Settings, error) {
	settings, err := l.Load()
	if err != nil {
		return nil, err
	}

	credentials, source, err := auth.Resolve(
		auth.FileSource{Path: filepath.Join(l.configDir(), constants.CredentialsFileName)},
		auth.EnvSource{AccessKeyVar: constants.EnvAccessKey, SecretKeyVar: constants.EnvSecretKey, Lookup: l.env()},
	)
	if err != nil {
		return nil, err
	}

	settings.Credentials = credentials
	settings.CredentialsSource = source

	return settings, nil
}

func (l Loader) flags() *viper.Viper {
	if l.Viper == nil {
		return viper.New()
	}

	return l.Viper
}

func (l Loader) env() func(string) string {
	if l.Getenv == nil {
		return os.Getenv
	}

	return l.Getenv
}

func (l Loader) configDir() string {
	if dir := l.flags().GetString(KeyConfigDir); dir != "" {
		return dir
	}

	return constants.ConfigDir
}

// resolveEndpoint applies flag, config file, ENDPOINT, default in that order.
func resolveEndpoint(v *viper.Viper, file *viper.Viper, getenv func(string) string) string {
	if v.IsSet(KeyEndpoint) && v.GetString(KeyEndpoint) != "" {
		return v.GetString(KeyEndpoint)
	}

	if endpoint := file.GetString(fileKeyEndpoint); endpoint != "" {
		return endpoint
	}

	if endpoint := getenv(constants.EnvEndpoint); endpoint != "" {
		return endpoint
	}

	return constants.DefaultEndpoint
}

// readKeyValueFile reads a KEY=value file through viper's env codec. A
// missing file yields an empty viper and no path.
func readKeyValueFile(path string) (*viper.Viper, string, error) {
	v := viper.New()

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return v, "", nil
		}

		return nil, "", fmt.Errorf("checking %s: %w", path, err)
	}

	v.SetConfigFile(path)
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}

	return v, path, nil
}
