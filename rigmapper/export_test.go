// SPDX-License-Identifier: MIT

package rigmapper

// Interpolate exposes the piecewise-linear kernel to external tests.
var Interpolate = interpolate
