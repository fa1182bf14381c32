// SPDX-License-Identifier: MIT

package processor

// Rebuilds returns how many times stage i rebuilt its index cache.
func (p *Processor) Rebuilds(i int) int { return p.caches[i].rebuilt }
