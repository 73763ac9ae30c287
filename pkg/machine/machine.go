// Package machine describes the PCs watched by the dashboard and where each
// one publishes its status file.
package machine

import (
	"path/filepath"
)

// Machine is a single PC on the LAN. It is built once from configuration
// and never modified afterwards.
type Machine struct {
	ID    string `json:"pc"`              // hostname or IP address
	Share string `json:"share"`           // SMB share name (e.g. DadBoard$)
	File  string `json:"file"`            // status file name inside the share
	Root  string `json:"root,omitempty"` // local mount root for the shares, empty for UNC
}

// New returns a Machine for the given identifier.
func New(id, share, file, root string) Machine {
	return Machine{
		ID:    id,
		Share: share,
		File:  file,
		Root:  root,
	}
}

// StatusPath returns the location of the machine's status file.
//
// Without a Root the UNC form \\pc\share\file is used. With a Root the
// shares are expected to be mounted as Root/pc/share, which is how a
// non-Windows host usually reaches them.
func (m Machine) StatusPath() string {
	if m.Root == "" {
		return `\\` + m.ID + `\` + m.Share + `\` + m.File
	}
	return filepath.Join(m.Root, m.ID, m.Share, m.File)
}
