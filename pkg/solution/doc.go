// SPDX-License-Identifier: MPL-2.0

// Package solution implements the solution model: an exported solution
// archive whose flows can be copied or deleted and whose version can be raised.
//
// A flow is referenced from three places that must stay in sync:
//
//   - a definition entry "Workflows/<name>-<UPPER-GUID>.json" in the archive,
//   - a <RootComponent type="29"> element in solution.xml,
//   - a <Workflow> element in customizations.xml.
//
// The model lists only flows referenced from all three. Mutations edit the
// manifest texts in place through package xmlpatch, re-derive the flow index
// and repack the archive. A Solution is created unloaded; the first operation
// or an explicit Load unpacks it. A failed Load leaves the model unloaded and
// the next call retries from scratch.
//
// A Solution is meant for a single caller and is not safe for concurrent use.
package solution
