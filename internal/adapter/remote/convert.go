package remote

import (
	"os"
	"path"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/pkg/sftp"

	"github.com/vertextoedge/label-portal/internal/domain"
	"github.com/vertextoedge/label-portal/internal/domain/vo"
)

// fromFileInfo converts an SFTP stat result for the entry at rp
func fromFileInfo(rp vo.RemotePath, fi os.FileInfo) domain.RemoteFile {
	f := domain.RemoteFile{
		Name:       rp.Name(),
		Path:       rp.Relative(),
		Type:       fileType(fi.Mode()),
		Size:       fi.Size(),
		ModifyTime: fi.ModTime().UTC(),
		Rights:     rightsFromMode(fi.Mode()),
	}
	if st, ok := fi.Sys().(*sftp.FileStat); ok {
		f.AccessTime = time.Unix(int64(st.Atime), 0).UTC()
		f.Owner = int(st.UID)
		f.Group = int(st.GID)
	}
	return f
}

func fileType(mode os.FileMode) domain.RemoteFileType {
	switch {
	case mode&os.ModeSymlink != 0:
		return domain.RemoteTypeSymlink
	case mode.IsDir():
		return domain.RemoteTypeDirectory
	default:
		return domain.RemoteTypeFile
	}
}

// rightsFromMode renders permission bits as rwx triplets
func rightsFromMode(mode os.FileMode) domain.RemoteRights {
	perm := mode.Perm()
	triplet := func(shift uint) string {
		b := []byte("---")
		if perm&(4<<shift) != 0 {
			b[0] = 'r'
		}
		if perm&(2<<shift) != 0 {
			b[1] = 'w'
		}
		if perm&(1<<shift) != 0 {
			b[2] = 'x'
		}
		return string(b)
	}
	return domain.RemoteRights{User: triplet(6), Group: triplet(3), Other: triplet(0)}
}

// fromEntry converts an FTP listing entry found in dir
func fromEntry(dir vo.RemotePath, e *ftp.Entry) domain.RemoteFile {
	rel := path.Join(dir.Relative(), e.Name)
	f := domain.RemoteFile{
		Name:       e.Name,
		Path:       rel,
		Size:       int64(e.Size),
		ModifyTime: e.Time.UTC(),
	}
	switch e.Type {
	case ftp.EntryTypeFolder:
		f.Type = domain.RemoteTypeDirectory
	case ftp.EntryTypeLink:
		f.Type = domain.RemoteTypeSymlink
	default:
		f.Type = domain.RemoteTypeFile
	}
	return f
}
