// Package device watches the active audio output device and pauses playback
// when an external device (headphones, Bluetooth, USB) disappears, so a movie
// does not keep blaring from the built-in speakers.
package device

import (
	"context"
	"encoding/json"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type AudioDeviceType int

const (
	AudioDeviceUnknown    AudioDeviceType = iota
	AudioDeviceBuiltIn                    // Built-in speakers
	AudioDeviceBluetooth                  // Bluetooth audio device
	AudioDeviceUSB                        // USB audio device
	AudioDeviceHDMI                       // HDMI audio
	AudioDeviceHeadphones                 // Wired headphones
)

type AudioDeviceInfo struct {
	Name       string
	DeviceType AudioDeviceType
	Transport  string
}

// Monitor polls the default audio output. Only supported on darwin; Start is
// a no-op elsewhere.
type Monitor struct {
	ctx           context.Context
	checkInterval time.Duration
	onDisconnect  func()
	lastDevice    *AudioDeviceInfo
	wasExternal   bool
	supported     bool
	log           *logrus.Entry
}

// NewMonitor creates a monitor that invokes onDisconnect when the active
// external output device goes away.
func NewMonitor(ctx context.Context, onDisconnect func()) *Monitor {
	return &Monitor{
		ctx:           ctx,
		checkInterval: 500 * time.Millisecond,
		onDisconnect:  onDisconnect,
		supported:     runtime.GOOS == "darwin",
		log:           logrus.WithField("component", "device"),
	}
}

// Start launches the polling loop.
func (m *Monitor) Start() {
	if !m.supported {
		m.log.Debug("audio monitor disabled: unsupported platform")
		return
	}
	go m.monitorLoop()
}

func (m *Monitor) monitorLoop() {
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	m.lastDevice = currentOutputDevice()
	if m.lastDevice != nil {
		m.wasExternal = isExternalDevice(m.lastDevice.DeviceType)
		m.log.WithField("device", m.lastDevice.Name).Debug("initial audio device")
	}

	for {
		select {
		case <-ticker.C:
			current := currentOutputDevice()
			if current == nil {
				continue
			}
			// External device replaced by the built-in output means the
			// external device disconnected.
			if m.wasExternal && !isExternalDevice(current.DeviceType) {
				m.log.WithField("device", current.Name).Info("external audio device disconnected")
				if m.onDisconnect != nil {
					m.onDisconnect()
				}
			}
			m.lastDevice = current
			m.wasExternal = isExternalDevice(current.DeviceType)

		case <-m.ctx.Done():
			m.log.Debug("audio monitor stopped")
			return
		}
	}
}

// spAudioOutput mirrors the fields of `system_profiler SPAudioDataType -json`
// the monitor needs.
type spAudioOutput struct {
	SPAudioDataType []struct {
		Items []struct {
			Name          string `json:"_name"`
			Transport     string `json:"coreaudio_device_transport"`
			DefaultOutput string `json:"coreaudio_default_audio_output_device"`
		} `json:"_items"`
	} `json:"SPAudioDataType"`
}

func currentOutputDevice() *AudioDeviceInfo {
	out, err := exec.Command("system_profiler", "SPAudioDataType", "-json").Output()
	if err != nil {
		return nil
	}
	var parsed spAudioOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil
	}
	for _, group := range parsed.SPAudioDataType {
		for _, item := range group.Items {
			if item.DefaultOutput != "spaudio_yes" {
				continue
			}
			return &AudioDeviceInfo{
				Name:       item.Name,
				DeviceType: detectDeviceType(item.Name, item.Transport),
				Transport:  item.Transport,
			}
		}
	}
	return nil
}

func detectDeviceType(name, transport string) AudioDeviceType {
	nameLower := strings.ToLower(strings.TrimSpace(name))

	switch {
	case strings.Contains(transport, "bluetooth"):
		return AudioDeviceBluetooth
	case strings.Contains(transport, "usb"):
		return AudioDeviceUSB
	case strings.Contains(transport, "hdmi"), strings.Contains(transport, "displayport"):
		return AudioDeviceHDMI
	case strings.Contains(transport, "built-in"), strings.Contains(transport, "internal"):
		return AudioDeviceBuiltIn
	}

	switch {
	case strings.Contains(nameLower, "airpods"),
		strings.Contains(nameLower, "bluetooth"),
		strings.Contains(nameLower, "bose"),
		strings.Contains(nameLower, "sony w"):
		return AudioDeviceBluetooth
	case strings.Contains(nameLower, "built-in"),
		strings.Contains(nameLower, "internal"),
		strings.Contains(nameLower, "macbook"),
		strings.Contains(nameLower, "speakers"):
		return AudioDeviceBuiltIn
	case strings.Contains(nameLower, "usb"), strings.Contains(nameLower, "dac"):
		return AudioDeviceUSB
	case strings.Contains(nameLower, "hdmi"), strings.Contains(nameLower, "display audio"):
		return AudioDeviceHDMI
	case strings.Contains(nameLower, "headphone"), strings.Contains(nameLower, "headset"):
		return AudioDeviceHeadphones
	}

	return AudioDeviceUnknown
}

func isExternalDevice(deviceType AudioDeviceType) bool {
	return deviceType == AudioDeviceBluetooth ||
		deviceType == AudioDeviceUSB ||
		deviceType == AudioDeviceHDMI ||
		deviceType == AudioDeviceHeadphones
}
