package keycodec_test

import (
	"fmt"

	"github.com/ssargent/dbkey/pkg/keycodec"
)

func ExampleDescriptor_New() {
	events := keycodec.MustDescriptor("EventKey",
		keycodec.Field("stream", keycodec.U32),
		keycodec.Field("seq", keycodec.I64),
	)

	k, err := events.New(keycodec.Uint32Value(7), keycodec.Int64Value(-1))
	if err != nil {
		panic(err)
	}
	fmt.Println(k)
	fmt.Println(k.Uint32(0), k.Int64(1))
	// Output:
	// 0x00000007_7FFFFFFFFFFFFFFF
	// 7 -1
}

func ExampleDescriptor_FromArgs() {
	d := keycodec.MustDescriptor("Tagged",
		keycodec.Field("id", keycodec.U16),
		keycodec.Field("tag", keycodec.Array(2), keycodec.WithDefault(keycodec.ArrayValue([]byte{0xA5, 0xA5}))),
	)

	k, err := d.FromArgs(keycodec.Args{"id": keycodec.Uint16Value(0x1234)})
	if err != nil {
		panic(err)
	}
	fmt.Printf("%x\n", k)
	// Output: 1234a5a5
}

func ExampleDescriptor_MinKey() {
	d := keycodec.MustDescriptor("Bounded",
		keycodec.Field("id", keycodec.U8, keycodec.WithMin(keycodec.Uint8Value(1))),
		keycodec.Field("delta", keycodec.I8),
	)

	fmt.Println(d.MinKey().Render(keycodec.FormatPrettyUpperHex))
	fmt.Println(d.MaxKey().Render(keycodec.FormatPrettyUpperHex))
	// Output:
	// [0x01, 0x00]
	// [0xFF, 0xFF]
}

func ExampleKey_Render() {
	d := keycodec.MustDescriptor("Pair", keycodec.Field("a", keycodec.U8), keycodec.Field("b", keycodec.U16))
	k := d.FromBytes([]byte{0x0A, 0xBE, 0xEF, 0x99})

	fmt.Println(k.Render(keycodec.FormatCompact))
	fmt.Println(k.Render(keycodec.FormatStandard))
	fmt.Println(k.Render(keycodec.FormatPrettyLowerHex))
	// Output:
	// 0x0A_BEEF
	// [10 190 239]
	// [0x0a, 0xbe, 0xef]
}
