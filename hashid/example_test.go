package hashid_test

import (
	"fmt"

	"github.com/sundayezeilo/usermgmt/hashid"
)

func ExampleCodec() {
	codec, err := hashid.New(hashid.Config{
		Salt:      "test-salt",
		Alphabet:  hashid.DefaultAlphabet,
		MinLength: hashid.DefaultMinLength,
	})
	if err != nil {
		panic(err)
	}

	token, _ := codec.Encode(42)
	id, ok := codec.Decode(token)
	fmt.Println(len(token), id, ok)

	_, ok = codec.Decode("not-a-token")
	fmt.Println(ok)
	// Output:
	// 10 42 true
	// false
}
