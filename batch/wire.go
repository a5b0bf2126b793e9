package batch

import "github.com/gogo/protobuf/proto"

// ExtensionTask and ExtensionResult are the wire messages for the optional
// GPU extension collaborator (spec.md §5: "batches of extension tasks are
// submitted ... result arrays indexed by submission order"). They follow the
// gogo/protobuf struct-tag convention biopb's generated types use, so they
// marshal through proto.Marshal/Unmarshal without a codegen step.

// ExtensionTask is one read's extension request: the 2-bit query and the
// reference window an external accelerator should align it against.
type ExtensionTask struct {
	ReadId      uint64 `protobuf:"varint,1,opt,name=read_id,json=readId" json:"read_id,omitempty"`
	Query       []byte `protobuf:"bytes,2,opt,name=query" json:"query,omitempty"`
	WindowStart int64  `protobuf:"varint,3,opt,name=window_start,json=windowStart" json:"window_start,omitempty"`
	WindowLen   int32  `protobuf:"varint,4,opt,name=window_len,json=windowLen" json:"window_len,omitempty"`
}

func (m *ExtensionTask) Reset()         { *m = ExtensionTask{} }
func (m *ExtensionTask) String() string { return proto.CompactTextString(m) }
func (*ExtensionTask) ProtoMessage()    {}

// ExtensionResult is the accelerator's answer to one ExtensionTask,
// submission-order-indexed per spec.md §5.
type ExtensionResult struct {
	ReadId    uint64 `protobuf:"varint,1,opt,name=read_id,json=readId" json:"read_id,omitempty"`
	Score     int32  `protobuf:"varint,2,opt,name=score" json:"score,omitempty"`
	QueryEnd  int32  `protobuf:"varint,3,opt,name=query_end,json=queryEnd" json:"query_end,omitempty"`
	TargetEnd int32  `protobuf:"varint,4,opt,name=target_end,json=targetEnd" json:"target_end,omitempty"`
}

func (m *ExtensionResult) Reset()         { *m = ExtensionResult{} }
func (m *ExtensionResult) String() string { return proto.CompactTextString(m) }
func (*ExtensionResult) ProtoMessage()    {}

// ExtensionBatch wraps one submission's tasks for a single proto.Marshal
// call, mirroring how a real accelerator client would frame a batch.
type ExtensionBatch struct {
	Tasks []*ExtensionTask `protobuf:"bytes,1,rep,name=tasks" json:"tasks,omitempty"`
}

func (m *ExtensionBatch) Reset()         { *m = ExtensionBatch{} }
func (m *ExtensionBatch) String() string { return proto.CompactTextString(m) }
func (*ExtensionBatch) ProtoMessage()    {}

// GPUDispatcher is the optional collaborator spec.md §5 describes for
// extension-task batches. Submit must return one result per task, in
// submission order.
type GPUDispatcher interface {
	Submit(batch *ExtensionBatch) ([]*ExtensionResult, error)
}
