// Package layout describes how game-object records are laid out in guest
// linear memory.
//
// Host and guest agree on a closed enumeration of kinds and field names. The
// guest announces, once per process, the byte offset of each field it knows
// and the size of each record; the Registry validates and stores those
// descriptors and the host uses them to write records every tick.
//
//	reg := layout.NewRegistry()
//	err := reg.Register(layout.KindStructure, 72, []layout.Entry{
//	    {Field: layout.FieldID, Offset: 0},
//	    {Field: layout.FieldKindTag, Offset: 24},
//	    ...
//	})
//	reg.Freeze()
//
// Any registration error is sticky: Err keeps returning it and the tick
// driver refuses to run.
package layout
