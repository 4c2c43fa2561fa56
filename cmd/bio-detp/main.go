// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/methyl/detection"
	"github.com/grailbio/methyl/sigset"
)

var (
	method      = flag.String("method", detection.NegECDF.String(), "Detection estimator: one of "+methodNames())
	negPath     = flag.String("neg", "", "Negative-control TSV path (columns G, R); required by the neg* methods")
	oobPath     = flag.String("oob", "", "Out-of-band TSV path (columns Channel, Value); required by oobecdf")
	outPath     = flag.String("out", "bio-detp.pval.tsv", "Output TSV path; gzipped if it ends in .gz")
	parallelism = flag.Int("parallelism", detection.DefaultOpts.Parallelism, "Maximum number of design types scored concurrently; 0 = all")
	threshold   = flag.Float64("threshold", 0.05, "Report the fraction of probes with p-value below this threshold")
)

func methodNames() string {
	names := make([]string, len(detection.Methods))
	for i, m := range detection.Methods {
		names[i] = m.String()
	}
	return strings.Join(names, ", ")
}

func bioDetpUsage() {
	fmt.Printf("Usage: %s [OPTIONS] signal.tsv\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = bioDetpUsage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() != 1 {
		log.Fatalf("Expected exactly one positional argument (signal TSV path), got: '%s'", strings.Join(flag.Args(), " "))
	}
	m, err := detection.ParseMethod(*method)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if _, err = detp(vcontext.Background(), flag.Arg(0), m); err != nil {
		log.Fatalf("%v", err)
	}
	log.Debug.Printf("exiting")
}

// detp loads the signal set at signalPath and the background references
// named by the flags, computes p-values with method m, and writes them to
// -out.
func detp(ctx context.Context, signalPath string, m detection.Method) (*sigset.SigSet, error) {
	ss, err := sigset.Load(ctx, sigset.Paths{Signal: signalPath, Neg: *negPath, OOB: *oobPath})
	if err != nil {
		return nil, err
	}
	opts := detection.Opts{Parallelism: *parallelism}
	if ss, err = detection.Compute(ss, m, &opts); err != nil {
		return nil, err
	}
	if err = sigset.WritePvals(ctx, *outPath, ss.Pval); err != nil {
		return nil, err
	}
	log.Printf("%s: %d probes, %.4f with %s p-value < %g; written to %s",
		ss.Name, ss.Pval.Len(), ss.Pval.FractionBelow(*threshold), m, *threshold, *outPath)
	return ss, nil
}
