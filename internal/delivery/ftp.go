package delivery

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"catalog/feedsync/internal/config"
	"catalog/feedsync/internal/domain"

	"github.com/jlaffaye/ftp"
	log "github.com/sirupsen/logrus"
)

const defaultFTPPort = "21"

// Conn is the subset of *ftp.ServerConn used for an upload.
type Conn interface {
	Login(user, password string) error
	ChangeDir(path string) error
	Stor(path string, r io.Reader) error
	Quit() error
}

// DialFunc opens a control connection to addr (host:port).
type DialFunc func(ctx context.Context, addr string, timeout time.Duration) (Conn, error)

type Sink interface {
	// Deliver uploads document to dest. Failures are *domain.DeliveryError.
	Deliver(ctx context.Context, document string, dest config.DeliveryConfig) error
}

type FTPSink struct {
	dial DialFunc
}

func NewFTPSink(dial DialFunc) *FTPSink {
	if dial == nil {
		dial = DialFTP
	}
	return &FTPSink{dial: dial}
}

// DialFTP connects with github.com/jlaffaye/ftp. Transfers use binary mode.
func DialFTP(ctx context.Context, addr string, timeout time.Duration) (Conn, error) {
	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(timeout))
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (s *FTPSink) Deliver(ctx context.Context, document string, dest config.DeliveryConfig) error {
	if dest.RemotePath == "" {
		dest.RemotePath = config.DefaultRemotePath
	}
	if dest.Filename == "" {
		dest.Filename = config.DefaultFilename
	}
	if err := config.Validate(dest); err != nil {
		return &domain.DeliveryError{Host: dest.Host, Stage: domain.StageConfig, Err: err}
	}

	staged, err := stage(document, dest.StagingDir)
	if err != nil {
		return &domain.DeliveryError{Host: dest.Host, Stage: domain.StageStaging, Err: err}
	}
	defer staged.release()

	addr := ftpAddr(dest.Host)
	conn, err := s.dial(ctx, addr, dest.Timeout)
	if err != nil {
		return &domain.DeliveryError{Host: dest.Host, Stage: domain.StageConnect, Err: err}
	}
	defer func() {
		if err := conn.Quit(); err != nil {
			log.Debugf("FTP quit for %s: %v", addr, err)
		}
	}()

	if err := conn.Login(dest.Username, dest.Password); err != nil {
		return &domain.DeliveryError{Host: dest.Host, Stage: domain.StageLogin, Err: err}
	}

	if dest.RemotePath != config.DefaultRemotePath {
		if err := conn.ChangeDir(dest.RemotePath); err != nil {
			log.Warnf("⚠️ Could not change to directory %s, uploading to the login directory: %v", dest.RemotePath, err)
		}
	}

	f, err := os.Open(staged.path)
	if err != nil {
		return &domain.DeliveryError{Host: dest.Host, Stage: domain.StageStaging, Err: err}
	}
	defer f.Close()

	if err := conn.Stor(dest.Filename, f); err != nil {
		return &domain.DeliveryError{Host: dest.Host, Stage: domain.StageTransfer, Err: err}
	}

	log.Infof("✅ Uploaded %s (%d bytes) to %s", dest.Filename, len(document), dest.Host)
	return nil
}

// stagingFile is the local copy of the document held for the duration of one upload.
type stagingFile struct {
	path string
}

func stage(document, dir string) (*stagingFile, error) {
	f, err := os.CreateTemp(dir, "feedsync-*.xml")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file: %w", err)
	}
	staged := &stagingFile{path: f.Name()}

	if _, err := f.WriteString(document); err != nil {
		f.Close()
		staged.release()
		return nil, fmt.Errorf("failed to write staging file: %w", err)
	}
	if err := f.Close(); err != nil {
		staged.release()
		return nil, fmt.Errorf("failed to close staging file: %w", err)
	}

	return staged, nil
}

func (s *stagingFile) release() {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		log.Warnf("Failed to remove staging file %s: %v", s.path, err)
	}
}

func ftpAddr(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, defaultFTPPort)
}
