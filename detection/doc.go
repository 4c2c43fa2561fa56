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
Package detection computes per-probe detection p-values for Infinium
methylation signal sets: the probability that a probe's (M, U) signal could
have arisen from background alone.

Five estimators are provided.  They differ in how the background is modeled
and in how a probe's two channels are combined into one score:

  NegECDF       empirical CDF of each negative-control channel
  NegNormal     normal fit (median, sd) of each negative-control channel
  NegNormalGS   one normal fit (mean, sd) of both negative-control channels
                pooled; emulates GenomeStudio
  NegNormalSum  per-channel normal fit, scaled to the sum M+U by doubling
                location and scale
  OOBECDF       empirical CDF of each out-of-band channel

Every estimator fits its background model once, scores the IR, IG and II
matrices against that model, and merges the results into a single vector
sorted by probe name.  Estimators never modify their input; they return a
copy of the signal set with the p-value slot populated.
*/
package detection
