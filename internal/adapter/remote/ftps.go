package remote

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"strings"
	"sync"

	"github.com/jlaffaye/ftp"
	"go.uber.org/zap"

	"github.com/vertextoedge/label-portal/internal/domain"
	"github.com/vertextoedge/label-portal/internal/domain/vo"
	"github.com/vertextoedge/label-portal/internal/port"
)

// Ensure FTPSClient implements port.RemoteStorage
var _ port.RemoteStorage = (*FTPSClient)(nil)

// ftpsConn serializes commands; a control connection carries one command at a time
type ftpsConn struct {
	mu sync.Mutex
	sc *ftp.ServerConn
}

func (c *ftpsConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sc.Quit()
}

func (c *ftpsConn) Keepalive() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sc.NoOp()
}

// FTPSClient is a RemoteStorage over FTP with explicit TLS
type FTPSClient struct {
	config  Config
	session *session[*ftpsConn]
	logger  *zap.Logger
}

// NewFTPSClient creates an FTPS client. No connection is made until the
// first operation or Connect.
func NewFTPSClient(cfg Config, logger *zap.Logger) *FTPSClient {
	c := &FTPSClient{config: cfg, logger: logger}
	c.session = newSession(cfg.Session, ProtocolFTPS, c.dial, logger)
	return c
}

func (c *FTPSClient) dial(ctx context.Context) (*ftpsConn, error) {
	host, _, err := net.SplitHostPort(c.config.Addr)
	if err != nil {
		host = c.config.Addr
	}

	opts := []ftp.DialOption{
		ftp.DialWithContext(ctx),
		ftp.DialWithExplicitTLS(&tls.Config{
			ServerName:         host,
			InsecureSkipVerify: c.config.SkipTLSVerify,
			MinVersion:         tls.VersionTLS12,
		}),
	}
	if c.config.Session.ConnectTimeout > 0 {
		opts = append(opts, ftp.DialWithTimeout(c.config.Session.ConnectTimeout))
	}

	sc, err := ftp.Dial(c.config.Addr, opts...)
	if err != nil {
		return nil, err
	}
	if err := sc.Login(c.config.Username, c.config.Password); err != nil {
		_ = sc.Quit()
		return nil, fmt.Errorf("ftps login failed: %w", err)
	}
	return &ftpsConn{sc: sc}, nil
}

// do runs fn with exclusive use of the control connection
func (c *FTPSClient) do(ctx context.Context, fn func(sc *ftp.ServerConn) error) error {
	return c.session.do(ctx, func(conn *ftpsConn) error {
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return fn(conn.sc)
	})
}

// Connect establishes the shared connection
func (c *FTPSClient) Connect(ctx context.Context) error {
	return c.session.Connect(ctx)
}

// Disconnect closes the shared connection
func (c *FTPSClient) Disconnect() error {
	return c.session.Close()
}

// UploadFile writes data to the category root, creating parent directories
func (c *FTPSClient) UploadFile(ctx context.Context, data []byte, p string, category domain.UploadCategory) (domain.UploadResult, error) {
	target, url, err := c.config.Layout.UploadTarget(p, category)
	if err != nil {
		return domain.UploadResult{}, err
	}

	err = c.do(ctx, func(sc *ftp.ServerConn) error {
		if err := mkdirAll(sc, target.Dir()); err != nil {
			return err
		}
		return sc.Stor(target.Full(), bytes.NewReader(data))
	})
	if err != nil {
		return domain.UploadResult{}, c.wrap("upload", target, err)
	}
	return domain.UploadResult{Path: target.Relative(), URL: url}, nil
}

// ftpDirectory is the subset of *ftp.ServerConn used to walk and build trees
type ftpDirectory interface {
	MakeDir(path string) error
	List(path string) ([]*ftp.Entry, error)
}

// mkdirAll creates dir and its parents below the base, tolerating ones that
// already exist
func mkdirAll(sc ftpDirectory, dir vo.RemotePath) error {
	if dir.IsRoot() {
		return nil
	}
	var current vo.RemotePath
	var err error
	for i, seg := range strings.Split(dir.Relative(), "/") {
		if i == 0 {
			current, err = vo.ResolveRemotePath(dir.Base(), seg)
		} else {
			current, err = current.Join(seg)
		}
		if err != nil {
			return err
		}
		if err := sc.MakeDir(current.Full()); err != nil && !isFileUnavailable(err) {
			return fmt.Errorf("failed to create %s: %w", current.Relative(), err)
		}
	}
	return nil
}

// DownloadFile reads a whole file into memory
func (c *FTPSClient) DownloadFile(ctx context.Context, p string) ([]byte, error) {
	rp, err := c.config.Layout.Resolve(p)
	if err != nil {
		return nil, err
	}

	var data []byte
	err = c.do(ctx, func(sc *ftp.ServerConn) error {
		resp, err := sc.Retr(rp.Full())
		if err != nil {
			return err
		}
		data, err = io.ReadAll(resp)
		if closeErr := resp.Close(); err == nil {
			err = closeErr
		}
		return err
	})
	if err != nil {
		return nil, c.wrap("download", rp, err)
	}
	return data, nil
}

// DeleteFile removes a file, or a directory and everything below it
func (c *FTPSClient) DeleteFile(ctx context.Context, p string) error {
	rp, err := c.config.Layout.Resolve(p)
	if err != nil {
		return err
	}
	if rp.IsRoot() {
		return fmt.Errorf("%w: refusing to delete the storage root", domain.ErrInvalidPath)
	}

	err = c.do(ctx, func(sc *ftp.ServerConn) error {
		info, err := stat(sc, rp)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return sc.RemoveDirRecur(rp.Full())
		}
		return sc.Delete(rp.Full())
	})
	if err != nil {
		return c.wrap("delete", rp, err)
	}
	return nil
}

// ListFiles lists the immediate children of a directory
func (c *FTPSClient) ListFiles(ctx context.Context, p string) ([]domain.RemoteFile, error) {
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

func (c *FTPSClient) list(ctx context.Context, dir vo.RemotePath) ([]domain.RemoteFile, error) {
	var files []domain.RemoteFile
	err := c.do(ctx, func(sc *ftp.ServerConn) error {
		var err error
		files, err = listDir(sc, dir)
		return err
	})
	return files, err
}

func listDir(sc ftpDirectory, dir vo.RemotePath) ([]domain.RemoteFile, error) {
	entries, err := sc.List(dir.Full())
	if err != nil {
		return nil, err
	}
	files := make([]domain.RemoteFile, 0, len(entries))
	for _, e := range entries {
		if isPseudoEntry(e.Name) {
			continue
		}
		files = append(files, fromEntry(dir, e))
	}
	return files, nil
}

// stat finds rp in its parent listing, since MLST support varies by server
func stat(sc ftpDirectory, rp vo.RemotePath) (domain.RemoteFile, error) {
	if rp.IsRoot() {
		return domain.RemoteFile{Name: rp.Name(), Type: domain.RemoteTypeDirectory}, nil
	}
	siblings, err := listDir(sc, rp.Dir())
	if err != nil {
		return domain.RemoteFile{}, err
	}
	for _, f := range siblings {
		if f.Name == rp.Name() {
			return f, nil
		}
	}
	return domain.RemoteFile{}, domain.ErrNotFound
}

// Search walks the subtree at p for names containing query
func (c *FTPSClient) Search(ctx context.Context, p, query string) ([]domain.RemoteFile, error) {
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
func (c *FTPSClient) CreateDirectory(ctx context.Context, p string) (domain.RemoteFile, error) {
	rp, err := c.config.Layout.Resolve(p)
	if err != nil {
		return domain.RemoteFile{}, err
	}

	var created domain.RemoteFile
	err = c.do(ctx, func(sc *ftp.ServerConn) error {
		if err := mkdirAll(sc, rp); err != nil {
			return err
		}
		created, err = stat(sc, rp)
		return err
	})
	if err != nil {
		return domain.RemoteFile{}, c.wrap("mkdir", rp, err)
	}
	return created, nil
}

// MoveFile renames oldPath to newPath
func (c *FTPSClient) MoveFile(ctx context.Context, oldPath, newPath string) error {
	from, err := c.config.Layout.Resolve(oldPath)
	if err != nil {
		return err
	}
	to, err := c.config.Layout.Resolve(newPath)
	if err != nil {
		return err
	}

	err = c.do(ctx, func(sc *ftp.ServerConn) error {
		return sc.Rename(from.Full(), to.Full())
	})
	if err != nil {
		return c.wrap("move", from, err)
	}
	return nil
}

// Exists reports whether p exists
func (c *FTPSClient) Exists(ctx context.Context, p string) (bool, error) {
	_, err := c.FileInfo(ctx, p)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// FileInfo stats a single path
func (c *FTPSClient) FileInfo(ctx context.Context, p string) (domain.RemoteFile, error) {
	rp, err := c.config.Layout.Resolve(p)
	if err != nil {
		return domain.RemoteFile{}, err
	}

	var info domain.RemoteFile
	err = c.do(ctx, func(sc *ftp.ServerConn) error {
		var err error
		info, err = stat(sc, rp)
		return err
	})
	if err != nil {
		return domain.RemoteFile{}, c.wrap("stat", rp, err)
	}
	return info, nil
}

func (c *FTPSClient) wrap(op string, rp vo.RemotePath, err error) error {
	if errors.Is(err, domain.ErrNotFound) || isFileUnavailable(err) {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, rp.Relative())
	}
	return fmt.Errorf("ftps %s %s: %w", op, rp.Relative(), err)
}

// isFileUnavailable reports a 550 reply
func isFileUnavailable(err error) bool {
	var te *textproto.Error
	return errors.As(err, &te) && te.Code == ftp.StatusFileUnavailable
}
