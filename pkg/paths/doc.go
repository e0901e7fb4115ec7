// Package paths computes the routes through a turnout and encodes them into a
// Path Table.
//
// # Overview
//
// A turnout is described by its track segments and its external endpoints.
// [Generate] connects the segment ends that meet within tolerance, walks the
// resulting graph from every endpoint to find each distinct route (a
// [SubPath]), and then collects routes that can be active at the same time
// into maximal conflict-free [Group] values. Two routes conflict when they
// share a segment, whatever the direction of travel.
//
//	res := paths.Generate(paths.Input{
//	    Segments:  segs,
//	    Endpoints: eps,
//	}, paths.DefaultOptions())
//	buf, err := res.Table.Encode()
//
// # Pipeline
//
// Generation runs the following steps on per-call state:
//
//  1. [BuildAdjacency] links segment ends whose tangents oppose each other
//     within AngleTolerance and whose positions lie within ConnectDistance.
//     Endpoints attach to segment ends pointing the same way.
//  2. The enumerator walks depth first from every endpoint. A segment end with
//     nothing beyond it becomes a synthetic bumper endpoint. A segment seen
//     twice in one walk ends the branch without a route.
//  3. Routes are deduplicated on their unordered endpoint pair and oriented so
//     that at most half of their segments are entered from end 1.
//  4. [BuildConflicts] computes the symmetric conflict map.
//  5. Groups are found by inclusion/exclusion search. A group that is a subset
//     of another is dropped. The search stops after Options.MaxGroups
//     candidates and marks the result truncated.
//  6. Groups are sorted into a canonical order and encoded as a [Table].
//
// # Path Table encoding
//
// The encoded table is a byte buffer. Each group is a label, a zero, then its
// routes as signed segment values each followed by a zero, and one more zero
// closing the group. A final zero closes the table:
//
//	'P' '0' 0  1 -2 0  3 0  0   'P' '1' 0  4 0  0   0
//
// A value of +n means segment n-1 is entered at its end 0, -n means it is
// entered at its end 1. Values are signed bytes, which limits encodable
// turnouts to 127 segments. [Decode] and [Length] walk the same structure.
//
// # Concurrency
//
// Generate keeps all of its state in a value private to the call, so turnouts
// may be generated concurrently. Results are not safe for concurrent mutation.
package paths
