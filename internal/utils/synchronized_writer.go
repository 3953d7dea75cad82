package utils

import (
	"io"
	"sync"
)

// SynchronizedWriter serializes writes from concurrent test class runs and flushes buffered writers after each write.
type SynchronizedWriter struct {
	writer io.Writer
	mutex  sync.Mutex
}

// NewSynchronizedWriter wraps the provided writer unless it is already synchronized.
func NewSynchronizedWriter(writer io.Writer) io.Writer {
	if writer == nil {
		return io.Discard
	}
	if _, alreadyWrapped := writer.(*SynchronizedWriter); alreadyWrapped {
		return writer
	}
	return &SynchronizedWriter{writer: writer}
}

// Write delegates to the underlying writer while holding the lock.
func (synchronizedWriter *SynchronizedWriter) Write(data []byte) (int, error) {
	synchronizedWriter.mutex.Lock()
	defer synchronizedWriter.mutex.Unlock()

	bytesWritten, writeError := synchronizedWriter.writer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}

	if flushableWriter, implementsFlush := synchronizedWriter.writer.(interface{ Flush() error }); implementsFlush {
		if flushError := flushableWriter.Flush(); flushError != nil {
			return bytesWritten, flushError
		}
	}

	return bytesWritten, nil
}

// Sync commits the underlying writer when it supports syncing, as *os.File does.
func (synchronizedWriter *SynchronizedWriter) Sync() error {
	synchronizedWriter.mutex.Lock()
	defer synchronizedWriter.mutex.Unlock()

	if syncableWriter, implementsSync := synchronizedWriter.writer.(interface{ Sync() error }); implementsSync {
		return syncableWriter.Sync()
	}
	return nil
}
