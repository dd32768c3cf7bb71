package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/pkg/sftp"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"

	"github.com/vertextoedge/label-portal/internal/domain"
	"github.com/vertextoedge/label-portal/internal/domain/vo"
	"github.com/vertextoedge/label-portal/internal/port"
)

// Ensure SFTPClient implements port.RemoteStorage
var _ port.RemoteStorage = (*SFTPClient)(nil)

// sshTransport is the part of *ssh.Client an sftpConn needs
type sshTransport interface {
	SendRequest(name string, wantReply bool, payload []byte) (bool, []byte, error)
	Close() error
}

type sftpConn struct {
	ssh  sshTransport
	sftp *sftp.Client
}

func (c *sftpConn) Close() error {
	sftpErr := c.sftp.Close()
	if err := c.ssh.Close(); err != nil {
		return err
	}
	return sftpErr
}

func (c *sftpConn) Keepalive() error {
	_, _, err := c.ssh.SendRequest("keepalive@openssh.com", true, nil)
	return err
}

// SFTPClient is a RemoteStorage over SSH File Transfer Protocol
type SFTPClient struct {
	config    Config
	sshConfig *ssh.ClientConfig
	session   *session[*sftpConn]
	logger    *zap.Logger
}

// NewSFTPClient creates an SFTP client. No connection is made until the
// first operation or Connect.
func NewSFTPClient(cfg Config, logger *zap.Logger) (*SFTPClient, error) {
	auth := []ssh.AuthMethod{}
	if cfg.PrivateKeyPath != "" {
		pem, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read private key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if cfg.Password != "" {
		auth = append(auth, ssh.Password(cfg.Password))
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if cfg.HostKey != "" {
		key, _, _, _, err := ssh.ParseAuthorizedKey([]byte(cfg.HostKey))
		if err != nil {
			return nil, fmt.Errorf("failed to parse host key: %w", err)
		}
		hostKeyCallback = ssh.FixedHostKey(key)
	} else {
		logger.Warn("remote.host_key not set, SFTP host key will not be verified")
	}

	c := &SFTPClient{
		config: cfg,
		sshConfig: &ssh.ClientConfig{
			User:            cfg.Username,
			Auth:            auth,
			HostKeyCallback: hostKeyCallback,
			Timeout:         cfg.Session.ConnectTimeout,
		},
		logger: logger,
	}
	c.session = newSession(cfg.Session, ProtocolSFTP, c.dial, logger)
	return c, nil
}

func (c *SFTPClient) dial(ctx context.Context) (*sftpConn, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, "tcp", c.config.Addr)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = nc.SetDeadline(deadline)
	}

	sc, chans, reqs, err := ssh.NewClientConn(nc, c.config.Addr, c.sshConfig)
	if err != nil {
		nc.Close()
		return nil, err
	}
	_ = nc.SetDeadline(time.Time{})

	sshClient := ssh.NewClient(sc, chans, reqs)
	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("failed to start sftp subsystem: %w", err)
	}
	return &sftpConn{ssh: sshClient, sftp: sftpClient}, nil
}

// Connect establishes the shared connection
func (c *SFTPClient) Connect(ctx context.Context) error {
	return c.session.Connect(ctx)
}

// Disconnect closes the shared connection
func (c *SFTPClient) Disconnect() error {
	return c.session.Close()
}

// UploadFile writes data to the category root, creating parent directories
func (c *SFTPClient) UploadFile(ctx context.Context, data []byte, p string, category domain.UploadCategory) (domain.UploadResult, error) {
	target, url, err := c.config.Layout.UploadTarget(p, category)
	if err != nil {
		return domain.UploadResult{}, err
	}

	err = c.session.do(ctx, func(conn *sftpConn) error {
		if err := conn.sftp.MkdirAll(target.Dir().Full()); err != nil {
			return fmt.Errorf("failed to create parent directories: %w", err)
		}
		f, err := conn.sftp.Create(target.Full())
		if err != nil {
			return err
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	})
	if err != nil {
		return domain.UploadResult{}, c.wrap("upload", target, err)
	}

	return domain.UploadResult{Path: target.Relative(), URL: url}, nil
}

// DownloadFile reads a whole file into memory
func (c *SFTPClient) DownloadFile(ctx context.Context, p string) ([]byte, error) {
	rp, err := c.config.Layout.Resolve(p)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = c.session.do(ctx, func(conn *sftpConn) error {
		f, err := conn.sftp.Open(rp.Full())
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = f.WriteTo(&buf)
		return err
	})
	if err != nil {
		return nil, c.wrap("download", rp, err)
	}
	return buf.Bytes(), nil
}

// DeleteFile removes a file, or a directory and everything below it
func (c *SFTPClient) DeleteFile(ctx context.Context, p string) error {
	rp, err := c.config.Layout.Resolve(p)
	if err != nil {
		return err
	}
	if rp.IsRoot() {
		return fmt.Errorf("%w: refusing to delete the storage root", domain.ErrInvalidPath)
	}

	err = c.session.do(ctx, func(conn *sftpConn) error {
		fi, err := conn.sftp.Lstat(rp.Full())
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return removeAll(conn.sftp, rp.Full())
		}
		return conn.sftp.Remove(rp.Full())
	})
	if err != nil {
		return c.wrap("delete", rp, err)
	}
	return nil
}

func removeAll(client *sftp.Client, dir string) error {
	entries, err := client.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, fi := range entries {
		if isPseudoEntry(fi.Name()) {
			continue
		}
		child := client.Join(dir, fi.Name())
		if fi.IsDir() {
			err = removeAll(client, child)
		} else {
			err = client.Remove(child)
		}
		if err != nil {
			return err
		}
	}
	return client.RemoveDirectory(dir)
}

// ListFiles lists the immediate children of a directory
func (c *SFTPClient) ListFiles(ctx context.Context, p string) ([]domain.RemoteFile, error) {
	rp, err := c.config.Layout.Resolve(p)
	if err != nil {
		return nil, err
	}
	files, err := c.list(ctx, rp)
	if err != nil {
		return nil, c.wrap("list", rp, err)
	}
	return files, nil
}

func (c *SFTPClient) list(ctx context.Context, dir vo.RemotePath) ([]domain.RemoteFile, error) {
	var files []domain.RemoteFile
	err := c.session.do(ctx, func(conn *sftpConn) error {
		entries, err := conn.sftp.ReadDir(dir.Full())
		if err != nil {
			return err
		}
		files = make([]domain.RemoteFile, 0, len(entries))
		for _, fi := range entries {
			if isPseudoEntry(fi.Name()) {
				continue
			}
			child, err := dir.Join(fi.Name())
			if err != nil {
				continue
			}
			files = append(files, fromFileInfo(child, fi))
		}
		return nil
	})
	return files, err
}

// Search walks the subtree at p for names containing query
func (c *SFTPClient) Search(ctx context.Context, p, query string) ([]domain.RemoteFile, error) {
	rp, err := c.config.Layout.Resolve(p)
	if err != nil {
		return nil, err
	}
	results, err := searchTree(ctx, rp, query, c.config.MaxSearchDepth, c.list)
	if err != nil {
		return nil, c.wrap("search", rp, err)
	}
	return results, nil
}

// CreateDirectory creates a directory and its parents
func (c *SFTPClient) CreateDirectory(ctx context.Context, p string) (domain.RemoteFile, error) {
	rp, err := c.config.Layout.Resolve(p)
	if err != nil {
		return domain.RemoteFile{}, err
	}

	var created domain.RemoteFile
	err = c.session.do(ctx, func(conn *sftpConn) error {
		if err := conn.sftp.MkdirAll(rp.Full()); err != nil {
			return err
		}
		fi, err := conn.sftp.Stat(rp.Full())
		if err != nil {
			return err
		}
		created = fromFileInfo(rp, fi)
		return nil
	})
	if err != nil {
		return domain.RemoteFile{}, c.wrap("mkdir", rp, err)
	}
	return created, nil
}

// MoveFile renames oldPath to newPath
func (c *SFTPClient) MoveFile(ctx context.Context, oldPath, newPath string) error {
	from, err := c.config.Layout.Resolve(oldPath)
	if err != nil {
		return err
	}
	to, err := c.config.Layout.Resolve(newPath)
	if err != nil {
		return err
	}

	err = c.session.do(ctx, func(conn *sftpConn) error {
		return conn.sftp.Rename(from.Full(), to.Full())
	})
	if err != nil {
		return c.wrap("move", from, err)
	}
	return nil
}

// Exists reports whether p exists
func (c *SFTPClient) Exists(ctx context.Context, p string) (bool, error) {
	_, err := c.FileInfo(ctx, p)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// FileInfo stats a single path
func (c *SFTPClient) FileInfo(ctx context.Context, p string) (domain.RemoteFile, error) {
	rp, err := c.config.Layout.Resolve(p)
	if err != nil {
		return domain.RemoteFile{}, err
	}

	var info domain.RemoteFile
	err = c.session.do(ctx, func(conn *sftpConn) error {
		fi, err := conn.sftp.Stat(rp.Full())
		if err != nil {
			return err
		}
		info = fromFileInfo(rp, fi)
		return nil
	})
	if err != nil {
		return domain.RemoteFile{}, c.wrap("stat", rp, err)
	}
	return info, nil
}

func (c *SFTPClient) wrap(op string, rp vo.RemotePath, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, rp.Relative())
	}
	return fmt.Errorf("sftp %s %s: %w", op, rp.Relative(), err)
}
