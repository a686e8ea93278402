// Package curriculum models the topic catalog and resident assignments.
//
// A Document is an ordered list of topics, persisted as a bare JSON array:
//
//	[
//	  {
//	    "id": "topic1",
//	    "title": "1. Informatics in Pathology Practice",
//	    "subtopics": ["Data literacy and EMR interaction"],
//	    "resources": [{"name": "Slide set", "url": "https://..."}],
//	    "residents": [
//	      {
//	        "name": "Alice",
//	        "subtopics": ["Data literacy and EMR interaction"],
//	        "dueDate": "2024-01-01"
//	      }
//	    ],
//	    "expanded": false
//	  }
//	]
//
// # Migration
//
// Older documents stored a single "subtopic" string per resident. Migrate
// normalizes any previously persisted document into the current shape and
// never fails: input that is not a JSON array of topics is reported with
// ok=false so callers can fall back to the seed catalog.
//
// # Operations
//
// ToggleExpand, AddResident, RemoveResident, UpdateResidentField and
// ToggleResidentSubtopic are pure: they return a new Document and leave the
// input untouched. Topics and residents are addressed by position. An index
// outside the current document is a programming error and panics.
//
// # File Format
//
// Encode writes 2-space indented JSON with a trailing newline. Topic fields
// this package does not know are kept verbatim and written back after the
// known ones.
package curriculum
