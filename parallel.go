/*
Copyright © 2018 the romsproc authors.
This file is part of romsproc.

romsproc is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

romsproc is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with romsproc.  If not, see <http://www.gnu.org/licenses/>.
*/

package romsproc

import (
	"runtime"
	"sync"
)

// parallelMap runs job for every index in [0, n) on nprocs workers and
// collects the results in index order. Jobs are independent; the first
// error encountered is returned after all workers have drained, and the
// results are discarded in that case. If nprocs < 1, GOMAXPROCS workers
// are used.
func parallelMap(n, nprocs int, job func(i int) (*Masked, error)) ([]*Masked, error) {
	if nprocs < 1 {
		nprocs = runtime.GOMAXPROCS(-1)
	}
	if nprocs > n {
		nprocs = n
	}
	results := make([]*Masked, n)
	jobChan := make(chan int, n)
	errChan := make(chan error, nprocs)
	var wg sync.WaitGroup
	for p := 0; p < nprocs; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobChan {
				r, err := job(i)
				if err != nil {
					errChan <- err
					return
				}
				results[i] = r
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobChan <- i
	}
	close(jobChan)
	wg.Wait()
	select {
	case err := <-errChan:
		return nil, err
	default:
	}
	return results, nil
}
