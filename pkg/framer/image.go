package framer

// Photo is an input image and where its framed copy is written.
type Photo struct {
	InPath  string
	OutPath string
	RelPath string
}
