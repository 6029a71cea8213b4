// internal/gridconnect/codec_test.go
package gridconnect

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tamzrod/vlcb-node/internal/vlcb"
)

func TestEncode(t *testing.T) {
	got := Encode(5, vlcb.New(vlcb.OpACON, 0x01, 0x00, 0x00, 0x07))
	want := ":SB0A0N9001000007;"
	if got != want {
		t.Fatalf("Encode=%q want %q", got, want)
	}
}

func TestDecodeStandard(t *testing.T) {
	f, err := Decode(":SB0A0N9001000007;\r\n")
	if err != nil {
		t.Fatalf("Decode err=%v", err)
	}
	want := Frame{ID: 0x585, Msg: vlcb.New(vlcb.OpACON, 0x01, 0x00, 0x00, 0x07)}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Fatalf("frame (-want +got):\n%s", diff)
	}
	if f.CANID() != 5 {
		t.Fatalf("CANID=%d want 5", f.CANID())
	}
}

func TestEncodeDecodeFullFrame(t *testing.T) {
	m := vlcb.New(vlcb.OpEVLRNI, 0x01, 0x00, 0x00, 0x07, 2, 1, 0xFF)
	f, err := Decode(Encode(127, m))
	if err != nil {
		t.Fatalf("Decode err=%v", err)
	}
	if diff := cmp.Diff(m, f.Msg); diff != "" {
		t.Fatalf("msg (-want +got):\n%s", diff)
	}
	if f.CANID() != 127 {
		t.Fatalf("CANID=%d want 127", f.CANID())
	}
}

func TestDecodeRemoteAndExtended(t *testing.T) {
	f, err := Decode(":SB0A0R;")
	if err != nil {
		t.Fatalf("Decode err=%v", err)
	}
	if !f.Remote || f.Msg.Len != 0 {
		t.Fatalf("want empty remote frame, got %+v", f)
	}

	f, err = Decode(":X00480004N0102;")
	if err != nil {
		t.Fatalf("Decode err=%v", err)
	}
	if !f.Extended || f.ID != 0x80004 || f.Msg.Len != 2 {
		t.Fatalf("extended frame=%+v", f)
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := []string{
		"",
		"SB0A0N90;",
		":SB0A0N90",
		":QB0A0N90;",
		":SB0A0Q90;",
		":SB0A0N9;",
		":SXYZ0N90;",
		":SB0A0N9G;",
		":SB0A0N000102030405060708;",
	}
	for _, s := range cases {
		if _, err := Decode(s); !errors.Is(err, ErrMalformed) {
			t.Fatalf("Decode(%q) err=%v want ErrMalformed", s, err)
		}
	}
}
