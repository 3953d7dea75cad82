package utils_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/jetrun/internal/utils"
)

type flushRecordingBuffer struct {
	bytes.Buffer
	flushCount int
}

func (buffer *flushRecordingBuffer) Flush() error {
	buffer.flushCount++
	return nil
}

func TestSynchronizedWriterFlushesAndSerializes(testInstance *testing.T) {
	target := &flushRecordingBuffer{}
	writer := utils.NewSynchronizedWriter(target)
	require.Same(testInstance, writer, utils.NewSynchronizedWriter(writer))

	const writerCount = 8
	var waitGroup sync.WaitGroup
	for writerIndex := 0; writerIndex < writerCount; writerIndex++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			_, writeError := writer.Write([]byte("line\n"))
			require.NoError(testInstance, writeError)
		}()
	}
	waitGroup.Wait()

	require.Equal(testInstance, writerCount, strings.Count(target.String(), "line\n"))
	require.Equal(testInstance, writerCount, target.flushCount)
}

type syncRecordingBuffer struct {
	bytes.Buffer
	syncCount int
}

func (buffer *syncRecordingBuffer) Sync() error {
	buffer.syncCount++
	return nil
}

func TestSynchronizedWriterSyncDelegates(testInstance *testing.T) {
	target := &syncRecordingBuffer{}
	writer := utils.NewSynchronizedWriter(target)

	syncer, implementsSync := writer.(interface{ Sync() error })
	require.True(testInstance, implementsSync)
	require.NoError(testInstance, syncer.Sync())
	require.Equal(testInstance, 1, target.syncCount)

	plainWriter := utils.NewSynchronizedWriter(&bytes.Buffer{}).(interface{ Sync() error })
	require.NoError(testInstance, plainWriter.Sync())
}
