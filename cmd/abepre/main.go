/*
 * Copyright (c) 2018 XLAB d.o.o
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Command abepre is a tool for working with access policies and for
// running the scheme end to end. Run "abepre help" for usage.
package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cabshare/abepre/abe"
	"github.com/cabshare/abepre/pairing"
	"github.com/cabshare/abepre/service"
	"github.com/pkg/errors"
	"v.io/x/lib/cmdline"
	"v.io/x/lib/timing"
	"v.io/x/lib/vlog"
)

func main() {
	vlog.Configure(vlog.LogToStderr(true))
	cmdline.Main(cmdRoot)
}

var (
	flagAttrs   string
	flagCurve   string
	flagWorkers int
)

func init() {
	cmdMatch.Flags.StringVar(&flagAttrs, "attrs", "", "Comma-separated attribute labels.")
	cmdDemo.Flags.StringVar(&flagCurve, "curve", pairing.DefaultCurve, "Pairing group, bn256 or bls12381.")
	cmdDemo.Flags.IntVar(&flagWorkers, "workers", 0, "Goroutines for group arithmetic; 0 uses all CPUs.")
}

var cmdRoot = &cmdline.Command{
	Name:  "abepre",
	Short: "attribute-based encryption with proxy re-encryption",
	Long: `
Command abepre converts boolean access policies to their matrix form, checks
attribute sets against policies and runs a complete re-encryption round trip.
`,
	Children: []*cmdline.Command{cmdPolicy, cmdMatch, cmdDemo},
}

var cmdPolicy = &cmdline.Command{
	Runner: cmdline.RunnerFunc(runPolicy),
	Name:   "policy",
	Short:  "print the wire form of a boolean policy",
	Long: `
Policy converts a boolean expression over attribute labels, using AND, OR and
brackets, to a policy matrix and prints its JSON encoding.
`,
	ArgsName: "<expression>",
	ArgsLong: "<expression> is the boolean policy, e.g. role:driver AND (zone:a OR zone:b).",
}

func runPolicy(env *cmdline.Env, args []string) error {
	policy, err := parsePolicy(env, args)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(policy, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(env.Stdout, string(b))

	return nil
}

var cmdMatch = &cmdline.Command{
	Runner: cmdline.RunnerFunc(runMatch),
	Name:   "match",
	Short:  "check attributes against a policy",
	Long: `
Match reports whether the attributes given with -attrs satisfy the policy.
`,
	ArgsName: "<expression>",
	ArgsLong: "<expression> is the boolean policy.",
}

func runMatch(env *cmdline.Env, args []string) error {
	policy, err := parsePolicy(env, args)
	if err != nil {
		return err
	}
	scheme, err := abe.NewScheme(abe.DefaultConfig())
	if err != nil {
		return err
	}

	if scheme.Match(strings.Split(flagAttrs, ","), policy) {
		fmt.Fprintln(env.Stdout, "satisfied")
	} else {
		fmt.Fprintln(env.Stdout, "not satisfied")
	}

	return nil
}

func parsePolicy(env *cmdline.Env, args []string) (*abe.AccessPolicy, error) {
	if len(args) == 0 {
		return nil, env.UsageErrorf("missing policy expression")
	}

	return abe.BooleanToPolicy(strings.Join(args, " "))
}

var cmdDemo = &cmdline.Command{
	Runner: cmdline.RunnerFunc(runDemo),
	Name:   "demo",
	Short:  "run a re-encryption round trip",
	Long: `
Demo publishes system parameters, issues keys to a rider and a driver, lets
the rider encrypt a trip request and delegate it to the driver through a
proxy, and prints how long each algorithm took. Values passed between the
parties go through their JSON encoding.
`,
}

func runDemo(env *cmdline.Env, args []string) error {
	if len(args) != 0 {
		return env.UsageErrorf("demo takes no arguments")
	}

	timer := timing.NewTimer("demo")
	s, err := service.New(abe.Config{Curve: flagCurve, Workers: flagWorkers})
	if err != nil {
		return err
	}
	scheme := s.Scheme()

	var (
		rider, driver *abe.UserKeys
		ct            *abe.Ciphertext
		rk            *abe.ReencryptionKey
		rct           *abe.ReencryptedCiphertext
		plaintext     []byte
	)
	msg := []byte(`{"pickup": "Trg republike 1", "dropoff": "Airport", "seats": 2}`)
	steps := []struct {
		name string
		run  func() error
	}{
		{"setup", func() error {
			_, err := s.Setup()
			return err
		}},
		{"keygen", func() error {
			if rider, err = s.KeyGen([]string{"role:rider", "city:lj"}, []byte("rider")); err != nil {
				return err
			}
			driver, err = s.KeyGen([]string{"role:driver", "city:lj"}, []byte("driver"))
			return err
		}},
		{"encrypt", func() error {
			policy, err := abe.BooleanToPolicy("role:rider AND city:lj")
			if err != nil {
				return err
			}
			if ct, err = s.Encrypt(msg, policy); err != nil {
				return err
			}
			// the proxy receives the encoded ciphertext
			b, err := json.Marshal(ct)
			if err != nil {
				return err
			}
			ct, err = scheme.DecodeCiphertext(b)
			return err
		}},
		{"rekeygen", func() error {
			target, err := abe.BooleanToPolicy("role:driver AND city:lj")
			if err != nil {
				return err
			}
			if rk, err = s.ReKeyGen(rider.Public.PseudoID, driver.Public.PseudoID, target); err != nil {
				return err
			}
			b, err := json.Marshal(rk)
			if err != nil {
				return err
			}
			rk, err = scheme.DecodeReencryptionKey(b)
			return err
		}},
		{"reencrypt", func() error {
			if rct, err = s.ReEncrypt(ct, rk); err != nil {
				return err
			}
			b, err := json.Marshal(rct)
			if err != nil {
				return err
			}
			rct, err = scheme.DecodeReencryptedCiphertext(b)
			return err
		}},
		{"verify", func() error {
			ok, err := s.Verify(driver.Public.PseudoID, rct)
			if err != nil {
				return err
			}
			if !ok {
				return abe.ErrVerificationFailed
			}
			return nil
		}},
		{"decrypt", func() error {
			plaintext, err = s.DecryptReencrypted(driver.Public.PseudoID, rct)
			return err
		}},
	}
	for _, step := range steps {
		timer.Push(step.name)
		err := step.run()
		timer.Pop()
		if err != nil {
			return errors.Wrap(err, step.name)
		}
	}
	timer.Finish()

	if string(plaintext) != string(msg) {
		return errors.New("decrypted payload does not match")
	}
	fmt.Fprintf(env.Stdout, "curve %s: %s shared %d bytes with %s\n",
		scheme.Group.Name(), rider.Public.PseudoID[:8], len(plaintext), driver.Public.PseudoID[:8])

	return timing.IntervalPrinter{}.Print(env.Stdout, timer.Intervals, timer.Now())
}
