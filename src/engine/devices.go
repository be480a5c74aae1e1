package engine

import (
	"os/exec"
	"regexp"
)

// ----- Audio device enumeration ----- //

// AudioDevice is one ALSA playback device, named the way scsynth's
// device option expects it ("hw:card,device").
type AudioDevice struct {
	Name        string
	Description string
}

// Example line from `aplay -l`:
//   card 0: PCH [HDA Intel PCH], device 0: ALC298 Analog [ALC298 Analog]
var aplayCardRe = regexp.MustCompile(
	`card\s+(\d+):\s+\S+\s+\[([^\]]+)\],\s*device\s+(\d+):\s+([^\[]+?)\s*\[([^\]]+)\]`)

// ListAudioDevices enumerates ALSA playback devices by shelling out
// to `aplay -l`. On systems without aplay (or when parsing fails) it
// returns an empty list; the caller falls back to the default device.
func ListAudioDevices() []AudioDevice {
	out, err := exec.Command("aplay", "-l").Output()
	if err != nil {
		return nil
	}
	return parseAplayList(string(out))
}

func parseAplayList(text string) []AudioDevice {
	var devices []AudioDevice
	for _, m := range aplayCardRe.FindAllStringSubmatch(text, -1) {
		devices = append(devices, AudioDevice{
			Name:        "hw:" + m[1] + "," + m[3],
			Description: "card " + m[1] + " (" + m[2] + ") dev " + m[3] + " (" + m[4] + " / " + m[5] + ")",
		})
	}
	return devices
}
