//go:build linux

package hid

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

type rawHandle struct {
	fd   int
	info Info
}

// Open opens a hidraw device node, e.g. /dev/hidraw3.
func Open(path string) (Handle, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := infoForNode(path)
	if err != nil {
		// Identity is best-effort; some sysfs layouts differ.
		info = Info{Path: path}
	}
	return &rawHandle{fd: fd, info: info}, nil
}

func (h *rawHandle) ReadReport(buf []byte, timeout time.Duration) (int, error) {
	fds := []unix.PollFd{{Fd: int32(h.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, fmt.Errorf("poll %s: %w", h.info.Path, err)
	}
	if n == 0 || fds[0].Revents&unix.POLLIN == 0 {
		return 0, nil
	}
	n, err = unix.Read(h.fd, buf)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EINTR {
			return 0, nil
		}
		return 0, fmt.Errorf("read %s: %w", h.info.Path, err)
	}
	return n, nil
}

func (h *rawHandle) Write(data []byte) (int, error) {
	n, err := unix.Write(h.fd, data)
	if err != nil {
		return n, fmt.Errorf("write %s: %w", h.info.Path, err)
	}
	return n, nil
}

func (h *rawHandle) Info() Info { return h.info }

func (h *rawHandle) Close() error { return unix.Close(h.fd) }

// Enumerate lists hidraw device nodes with their USB identity.
func Enumerate() ([]Info, error) {
	nodes, err := filepath.Glob("/sys/class/hidraw/hidraw*")
	if err != nil {
		return nil, err
	}
	var out []Info
	for _, n := range nodes {
		info, err := infoForNode(filepath.Join("/dev", filepath.Base(n)))
		if err != nil {
			continue
		}
		out = append(out, info)
	}
	return out, nil
}

// infoForNode resolves the USB identity of a hidraw node from its sysfs
// uevent file.
func infoForNode(devPath string) (Info, error) {
	node := filepath.Base(devPath)
	data, err := os.ReadFile(filepath.Join("/sys/class/hidraw", node, "device", "uevent"))
	if err != nil {
		return Info{}, err
	}
	info := parseUevent(string(data))
	info.Path = devPath
	return info, nil
}

// parseUevent extracts HID_NAME and HID_ID from uevent contents.
// HID_ID has the form bus:vendor:product in hex, e.g. 0003:000017CC:00001110.
func parseUevent(uevent string) Info {
	var info Info
	for _, line := range strings.Split(uevent, "\n") {
		k, v, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		switch k {
		case "HID_NAME":
			info.Name = v
		case "HID_ID":
			parts := strings.Split(v, ":")
			if len(parts) != 3 {
				continue
			}
			bus, _ := strconv.ParseUint(parts[0], 16, 32)
			vid, _ := strconv.ParseUint(parts[1], 16, 32)
			pid, _ := strconv.ParseUint(parts[2], 16, 32)
			info.Bus = int(bus)
			info.VendorID = uint16(vid)
			info.ProductID = uint16(pid)
		}
	}
	return info
}
