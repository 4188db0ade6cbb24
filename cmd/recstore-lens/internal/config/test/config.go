package configtest

import (
	"bufio"
	"os"
	"strings"
	"testing"

	"github.com/nspcc-dev/recstore/cmd/recstore-lens/internal/config"
	"github.com/stretchr/testify/require"
)

func fromFile(t testing.TB, path string) *config.Config {
	c, err := config.New(config.WithConfigFile(path))
	require.NoError(t, err)

	return c
}

// ForEachFileType passes configs read from next files:
//   - `<pref>.yaml`;
//   - `<pref>.json`.
func ForEachFileType(t testing.TB, pref string, f func(*config.Config)) {
	for _, path := range []string{pref + ".yaml", pref + ".json"} {
		f(fromFile(t, path))
	}
}

// ForEnvFileType sets ENV variables listed in `<pref>.env` for the test
// duration and passes config read from them.
func ForEnvFileType(t *testing.T, pref string, f func(*config.Config)) {
	file, err := os.Open(pref + ".env")
	require.NoError(t, err)
	defer file.Close()

	sc := bufio.NewScanner(file)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		require.True(t, ok, line)
		t.Setenv(k, strings.Trim(v, `"`))
	}
	require.NoError(t, sc.Err())

	f(EmptyConfig(t))
}

// EmptyConfig returns config without any values and sections.
func EmptyConfig(t testing.TB) *config.Config {
	c, err := config.New()
	require.NoError(t, err)

	return c
}
