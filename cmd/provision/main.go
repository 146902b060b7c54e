// Command provision builds the credential image flashed alongside the
// firmware: four null-terminated strings followed by the erased-byte
// sentinel, in the order the firmware reads them.
//
//	provision -in credentials.yaml -out credstore.bin
package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"weatherstation-go/credstore"
)

type credFile struct {
	NetworkID     string `yaml:"network_id"`
	NetworkSecret string `yaml:"network_secret"`
	AccountID     string `yaml:"account_id"`
	AccountSecret string `yaml:"account_secret"`
}

func main() {
	in := flag.String("in", "credentials.yaml", "credentials file")
	out := flag.String("out", "credstore.bin", "image to write")
	flag.Parse()

	raw, err := os.ReadFile(*in)
	if err != nil {
		fail("read %s: %v", *in, err)
	}
	var c credFile
	if err := yaml.Unmarshal(raw, &c); err != nil {
		fail("parse %s: %v", *in, err)
	}

	fields := []struct {
		name string
		val  string
	}{
		{"network_id", c.NetworkID},
		{"network_secret", c.NetworkSecret},
		{"account_id", c.AccountID},
		{"account_secret", c.AccountSecret},
	}

	var img []byte
	for _, f := range fields {
		if f.val == "" {
			fail("%s: must not be empty", f.name)
		}
		if len(f.val)+1 > credstore.MaxStringLen {
			fail("%s: longer than %d bytes", f.name, credstore.MaxStringLen-1)
		}
		for i := 0; i < len(f.val); i++ {
			if f.val[i] == 0 || f.val[i] == credstore.Sentinel {
				fail("%s: byte %d is reserved", f.name, f.val[i])
			}
		}
		img = append(img, f.val...)
		img = append(img, 0)
	}
	img = append(img, credstore.Sentinel)

	if err := os.WriteFile(*out, img, 0o600); err != nil {
		fail("write %s: %v", *out, err)
	}
	fmt.Printf("wrote %s (%d bytes)\n", *out, len(img))
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "provision: "+format+"\n", args...)
	os.Exit(1)
}
