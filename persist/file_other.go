//go:build !unix

package persist

// File is only available on unix platforms.
type File[D Data] struct {
	RefCount
	path string
}

func NewFile[D Data](path string) *File[D] {
	return &File[D]{path: path}
}

func (f *File[D]) Path() string { return f.path }

func (f *File[D]) Handle() (Handle[D], error) {
	return nil, ErrUnsupported
}
