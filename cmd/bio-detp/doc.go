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

/*
bio-detp computes per-probe detection p-values for an Infinium methylation
signal set and writes them as a two-column TSV (Probe, Pval) sorted by probe
name.

The signal TSV has columns Probe, Design (IR, IG or II), M and U.  The
negative-control TSV has columns G and R; the out-of-band TSV has columns
Channel (G or R) and Value.  Inputs and output may be gzipped (".gz").

Sample usage:
bio-detp \
    --method negecdf \
    --neg negctl.tsv \
    --out sample.pval.tsv \
    sample.signal.tsv
*/
package main
