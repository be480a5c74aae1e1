package engine

import "testing"

const aplaySample = `**** List of PLAYBACK Hardware Devices ****
card 0: PCH [HDA Intel PCH], device 0: ALC298 Analog [ALC298 Analog]
  Subdevices: 1/1
  Subdevice #0: subdevice #0
card 1: HDMI [HDA ATI HDMI], device 3: HDMI 0 [HDMI 0]
  Subdevices: 1/1
  Subdevice #0: subdevice #0
`

func TestParseAplayList(t *testing.T) {
	devices := parseAplayList(aplaySample)
	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(devices))
	}
	if devices[0].Name != "hw:0,0" {
		t.Errorf("expected hw:0,0, got %q", devices[0].Name)
	}
	if devices[0].Description != "card 0 (HDA Intel PCH) dev 0 (ALC298 Analog / ALC298 Analog)" {
		t.Errorf("unexpected description: %q", devices[0].Description)
	}
	if devices[1].Name != "hw:1,3" {
		t.Errorf("expected hw:1,3, got %q", devices[1].Name)
	}
}

func TestParseAplayListEmpty(t *testing.T) {
	if devices := parseAplayList("aplay: device_list:274: no soundcards found...\n"); len(devices) != 0 {
		t.Errorf("expected no devices, got %v", devices)
	}
}
