// Octopus: a germline/somatic variant caller.
// Copyright (c) 2020 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elprep/blob/master/LICENSE.txt>.

package assembler

import "errors"

// ErrBadReferenceSequence is returned by InsertReference when k is
// larger than the reference, or the reference contains kmers outside
// the canonical DNA alphabet.
var ErrBadReferenceSequence = errors.New("assembler: bad reference sequence")

// ErrReferenceAlreadyInserted is returned by a second call to
// InsertReference.
var ErrReferenceAlreadyInserted = errors.New("assembler: reference already inserted")

// ErrGraphInconsistency marks a state where Prune found the reference
// path not to be unique, or pruning left the graph empty or with
// still-prunable reference flanks. Callers recover locally: the graph
// has already been cleared and Prune has returned false; this error
// exists so callers have something to wrap that outcome in.
var ErrGraphInconsistency = errors.New("assembler: graph inconsistency")
