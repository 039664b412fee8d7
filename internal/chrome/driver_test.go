package chrome

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gustavo-meilus/flowgate/internal/archive"
)

func TestNewBrowser_Defaults(t *testing.T) {
	b, err := NewBrowser(Options{})
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, 30*time.Second, b.opts.Navigation)
	assert.Equal(t, 10*time.Second, b.opts.Action)
	assert.Equal(t, archive.ModeLive, b.opts.Mode)
	assert.NotNil(t, b.log)
}

func TestNewBrowser_RecordModeRequiresArchive(t *testing.T) {
	_, err := NewBrowser(Options{Mode: archive.ModeRecord})
	require.EqualError(t, err, "chrome: record mode requires an archive")
}

func TestNewBrowser_ReplayModeRequiresSession(t *testing.T) {
	_, err := NewBrowser(Options{Mode: archive.ModeReplay, Archive: &archive.Archive{}})
	require.EqualError(t, err, "chrome: replay mode requires a session id")
}

func TestNewBrowser_LiveModeNeedsNoArchive(t *testing.T) {
	b, err := NewBrowser(Options{Mode: archive.ModeLive})
	require.NoError(t, err)
	b.Close()
}
