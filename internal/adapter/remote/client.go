package remote

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vertextoedge/label-portal/internal/port"
)

// Protocols supported by New
const (
	ProtocolSFTP = "sftp"
	ProtocolFTPS = "ftps"
)

// Config contains the remote host settings shared by both protocols
type Config struct {
	Addr     string
	Username string
	Password string

	// PrivateKeyPath enables SSH public key auth (SFTP only)
	PrivateKeyPath string

	// HostKey is the expected server key in authorized_keys format (SFTP
	// only). Empty disables host key checking.
	HostKey string

	// SkipTLSVerify disables certificate checks (FTPS only)
	SkipTLSVerify bool

	Session        SessionConfig
	Layout         Layout
	MaxSearchDepth int
}

// New creates the client for protocol. The result is meant to be shared by
// the whole process.
func New(protocol string, cfg Config, logger *zap.Logger) (port.RemoteStorage, error) {
	switch protocol {
	case ProtocolSFTP:
		return NewSFTPClient(cfg, logger)
	case ProtocolFTPS:
		return NewFTPSClient(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported remote protocol: %s", protocol)
	}
}
