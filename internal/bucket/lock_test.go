package bucket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/wordex/internal/errors"
)

func TestDirLockExcludes(t *testing.T) {
	dir := t.TempDir()

	l1 := NewDirLock(dir)
	require.NoError(t, l1.TryLock())

	l2 := NewDirLock(dir)
	err := l2.TryLock()
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeOutputLocked, errors.GetCode(err))

	require.NoError(t, l1.Unlock())
	require.NoError(t, l2.TryLock())
	require.NoError(t, l2.Unlock())
}

func TestDirLockUnlockWithoutLock(t *testing.T) {
	l := NewDirLock(t.TempDir())
	assert.NoError(t, l.Unlock())
}

func TestDirLockCreatesDirectory(t *testing.T) {
	dir := t.TempDir() + "/nested/out"
	l := NewDirLock(dir)
	require.NoError(t, l.TryLock())
	require.NoError(t, l.Unlock())
}
