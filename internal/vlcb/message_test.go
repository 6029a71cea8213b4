// internal/vlcb/message_test.go
package vlcb

import "testing"

func TestNewTruncatesAndPadsZero(t *testing.T) {
	m := New(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	if m.Len != MaxLen {
		t.Fatalf("len=%d want %d", m.Len, MaxLen)
	}

	short := New(OpNENRD, 0x01, 0x00)
	if short.Data[3] != 0 {
		t.Fatalf("bytes past len must read zero, got %d", short.Data[3])
	}
}

func TestNNAndEN(t *testing.T) {
	m := New(OpACON, 0x01, 0x02, 0x03, 0x04)
	if m.NN() != 0x0102 {
		t.Fatalf("nn=%#x", m.NN())
	}
	if m.EN() != 0x0304 {
		t.Fatalf("en=%#x", m.EN())
	}
}

func TestResponseLayouts(t *testing.T) {
	tests := []struct {
		name string
		got  Message
		want []byte
	}{
		{"wrack", WRACK(0x0102), []byte{OpWRACK, 0x01, 0x02}},
		{"grsp", GRSP(0x0102, OpEVLRN, ServiceOldTeach, StatusOK), []byte{OpGRSP, 0x01, 0x02, OpEVLRN, ServiceOldTeach, 0}},
		{"cmderr", CMDERR(0x0102, StatusInvalidEvent), []byte{OpCMDERR, 0x01, 0x02, StatusInvalidEvent}},
		{"enrsp", ENRSP(0x0102, 0x0A0B, 0x0C0D, 3), []byte{OpENRSP, 0x01, 0x02, 0x0A, 0x0B, 0x0C, 0x0D, 3}},
		{"neval", NEVAL(0x0102, 3, 1, 9), []byte{OpNEVAL, 0x01, 0x02, 3, 1, 9}},
		{"evans", EVANS(0x0A0B, 0x0C0D, 2, 7), []byte{OpEVANS, 0x0A, 0x0B, 0x0C, 0x0D, 2, 7}},
		{"enack", ENACK(0x0102, OpASON, 0, 7), []byte{OpENACK, 0x01, 0x02, OpASON, 0, 0, 0, 7}},
		{"dgn", DGN(0x0102, 1, 9, 0x1234), []byte{OpDGN, 0x01, 0x02, 1, 9, 0x12, 0x34}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.got.Bytes()
			if string(got) != string(tc.want) {
				t.Fatalf("got % X want % X", got, tc.want)
			}
		})
	}
}

func TestEventFamilies(t *testing.T) {
	for _, op := range []byte{OpACON, OpACOF3, OpARON, OpAROF} {
		if !IsLongEvent(op) || IsShortEvent(op) {
			t.Fatalf("op %#x should be long", op)
		}
	}
	for _, op := range []byte{OpASON, OpASOF1, OpASON2, OpASOF3} {
		if !IsShortEvent(op) || IsLongEvent(op) {
			t.Fatalf("op %#x should be short", op)
		}
	}
	if IsAccessoryEvent(OpEVLRN) {
		t.Fatalf("EVLRN is not an accessory event")
	}
}
