// Command hashid encodes and decodes user ID tokens offline, using the same
// salt the server reads from HASH_SALT.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/sundayezeilo/usermgmt/hashid"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "hashid",
		Usage:     "Encode and decode user ID tokens",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "salt",
				Aliases: []string{"s"},
				Usage:   "Salt used by the server",
				EnvVars: []string{"HASH_SALT"},
			},
			&cli.IntFlag{
				Name:  "min-length",
				Usage: "Minimum token length",
				Value: hashid.DefaultMinLength,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "encode",
				Usage:     "Print the token for each numeric id",
				ArgsUsage: "<id>...",
				Action:    encodeAction,
			},
			{
				Name:      "decode",
				Usage:     "Print the numeric id for each token",
				ArgsUsage: "<token>...",
				Action:    decodeAction,
			},
			{
				Name:  "salt",
				Usage: "Print a random salt for HASH_SALT",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "length",
						Usage: "Salt length",
						Value: hashid.DefaultSaltLength,
					},
				},
				Action: saltAction,
			},
		},
	}
}

func codecFromContext(c *cli.Context) (*hashid.Codec, error) {
	if c.String("salt") == "" {
		return nil, cli.Exit("a salt is required: pass --salt or set HASH_SALT", 2)
	}

	codec, err := hashid.New(hashid.Config{
		Salt:      c.String("salt"),
		Alphabet:  hashid.DefaultAlphabet,
		MinLength: c.Int("min-length"),
	})
	if err != nil {
		return nil, cli.Exit(err.Error(), 2)
	}
	return codec, nil
}

func encodeAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("encode: at least one id is required", 2)
	}

	codec, err := codecFromContext(c)
	if err != nil {
		return err
	}

	for _, arg := range c.Args().Slice() {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return cli.Exit(fmt.Sprintf("encode: %q is not an integer", arg), 1)
		}
		token, err := codec.Encode(id)
		if err != nil {
			return cli.Exit(fmt.Sprintf("encode %d: %v", id, err), 1)
		}
		fmt.Fprintf(c.App.Writer, "%d\t%s\n", id, token)
	}
	return nil
}

func decodeAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("decode: at least one token is required", 2)
	}

	codec, err := codecFromContext(c)
	if err != nil {
		return err
	}

	invalid := 0
	for _, token := range c.Args().Slice() {
		id, ok := codec.Decode(token)
		if !ok {
			invalid++
			fmt.Fprintf(c.App.Writer, "%s\tinvalid\n", token)
			continue
		}
		fmt.Fprintf(c.App.Writer, "%s\t%d\n", token, id)
	}

	if invalid > 0 {
		return cli.Exit(fmt.Sprintf("decode: %d invalid token(s)", invalid), 1)
	}
	return nil
}

func saltAction(c *cli.Context) error {
	salt, err := hashid.NewSalt(c.Int("length"))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	fmt.Fprintln(c.App.Writer, salt)
	return nil
}
