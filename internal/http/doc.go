// Package http provides HTTP handlers and routing for the meeting
// scheduler's external interface (spec §6).
//
// The router exposes:
//   - POST /api/meetings: submits a MeetingRequest for static-check admission.
//     Returns a SchedulingResult; 201 when satisfiable, 409 when the
//     constraint backend rejects the proposal.
//   - GET /api/meetings/{id}: fetches a single meeting; 404 if absent.
//   - GET /api/meetings: lists all meetings.
//   - GET /api/meetings/status/{status}: lists meetings in a given lifecycle
//     status.
//   - GET /api/meetings/room/{roomId}: lists meetings booked against a room.
//   - GET /api/meetings/range?start&end: lists meetings whose interval
//     overlaps [start, end).
//   - PUT /api/meetings/{id}: re-checks and updates an existing meeting,
//     excluding itself from the conflict snapshot.
//   - DELETE /api/meetings/{id}: removes a meeting; 409 if the lifecycle
//     monitor raises an ERROR or CRITICAL violation on delete.
//   - POST /api/meetings/{id}/confirm|reject|cancel: drives the meeting
//     status machine.
//   - GET /api/meetings/verification/stats: aggregate monitor statistics.
//   - GET /api/meetings/verification/violations: the monitor's violation log.
//   - POST /api/meetings/verification/check-pending: forces a pending-meeting
//     sweep and returns any newly raised UNRESOLVED_MEETING violations.
//
// Rooms and participants expose plain CRUD under /api/rooms and
// /api/participants; their contents are data only and not part of the
// verification core.
//
// Request/response DTOs live alongside their respective handlers so tests
// and documentation share the same ground truth.
package http
