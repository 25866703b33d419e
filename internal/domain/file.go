package domain

import "io"

// FileUpload is a file handed to the gateway for storage
type FileUpload struct {
	Filename    string
	ContentType string
	Data        io.Reader
}
