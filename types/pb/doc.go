// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package pb adapts protobuf messages to the CEL value model.

The Adapter converts messages read from activations or produced by message
literals. The Provider resolves message names, enum constants and message
literals against a protoregistry.Types, so that an expression such as

	google.protobuf.FieldDescriptorProto{name: "id", number: 1}.number == 1

builds a real message and reads its fields back through the adapter.

Unset message-typed fields read as a typed null which equals null and whose
own fields read as the defaults of the message type.
*/
package pb
