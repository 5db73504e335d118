/*
Package types defines core data structures used throughout restdeck.

# Overview

The types package provides shared type definitions for:
  - Collection descriptors and their field schemas
  - Records fetched from a collection's remote source
  - Fetch results and fetch history entries
  - Transport configuration (TLS)

# Collections

Collection:
  - Key, title and remote locator (URL)
  - Optional JMESPath expression selecting the record array
  - Ordered field list; each field is flagged for table display,
    form editing and required-ness

Field kinds:
  - KindText: single-line input
  - KindLongText: multi-line input
  - KindBoolean: Yes/No select, rendered as ✅/❌ in tables

# Records

Record is a map from field name to decoded JSON value. The "id" field
is the record identity; ToID normalises the numeric forms produced by
encoding/json (json.Number, float64) into int64.

# Thread Safety

Types in this package carry no synchronisation. Records are cloned by
their owners before being handed out.
*/
package types
