// Package dump reads analyzer output and writes layout results using the JSON
// field names of the disassembly visualizer backend.
package dump

// FunctionRecord is one function of an analyzer dump.
type FunctionRecord struct {
	Name   string        `json:"name" jsonschema:"description=Function name as found in the symbol table"`
	Blocks []BlockRecord `json:"blocks"`
	Loops  []LoopRecord  `json:"loops,omitempty" jsonschema:"description=Top-level loops of the loop nesting forest"`
}

// BlockRecord is a basic block on input and an ordering entry on output.
type BlockRecord struct {
	Name          string              `json:"name"`
	FunctionName  string              `json:"function_name,omitempty"`
	StartAddress  uint64              `json:"start_address"`
	EndAddress    uint64              `json:"end_address"`
	NInstructions *int                `json:"n_instructions,omitempty" jsonschema:"description=Defaults to the number of instructions"`
	Instructions  []InstructionRecord `json:"instructions"`
	NextBlocks    []string            `json:"next_block_numbers"`
	Hidables      []HidableRecord     `json:"hidables,omitempty"`
	Flags         []string            `json:"flags,omitempty" jsonschema:"enum=vector,enum=memread,enum=memwrite,enum=call,enum=syscall,enum=fp"`

	// Output only.
	BlockType    string            `json:"block_type,omitempty" jsonschema:"enum=normal,enum=pseudoloop"`
	Loops        []OccupancyRecord `json:"loops,omitempty"`
	Backedges    []string          `json:"backedges,omitempty"`
	IsLoopHeader bool              `json:"is_loop_header,omitempty"`
}

type InstructionRecord struct {
	Address        uint64           `json:"address"`
	Instruction    string           `json:"instruction"`
	Correspondence map[string][]int `json:"correspondence,omitempty" jsonschema:"description=Source file to line numbers"`
	Flags          []string         `json:"flags,omitempty"`
	Variables      []VariableRecord `json:"variables,omitempty"`
}

// VariableRecord is a local or parameter of the enclosing function. VarType
// is 0 for locals and 1 for parameters.
type VariableRecord struct {
	Name       string                   `json:"name"`
	SourceFile string                   `json:"source_file,omitempty"`
	SourceLine int                      `json:"source_line,omitempty"`
	Locations  []VariableLocationRecord `json:"locations"`
	VarType    int                      `json:"var_type" jsonschema:"enum=0,enum=1"`
}

// VariableLocationRecord carries hex address strings such as "0x4005d0".
type VariableLocationRecord struct {
	StartAddress string `json:"start_address"`
	EndAddress   string `json:"end_address"`
	Location     string `json:"location"`
}

type HidableRecord struct {
	Name         string `json:"name"`
	StartAddress uint64 `json:"start_address"`
	EndAddress   uint64 `json:"end_address"`
}

// LoopRecord is a node of the loop nesting forest. Backedges are
// [source, target] block name pairs.
type LoopRecord struct {
	Name        string       `json:"name"`
	HeaderBlock string       `json:"header_block,omitempty"`
	Blocks      []string     `json:"blocks"`
	Backedges   [][2]string  `json:"backedges,omitempty"`
	Loops       []LoopRecord `json:"loops,omitempty"`
}

type OccupancyRecord struct {
	Name      string `json:"name"`
	LoopCount int    `json:"loop_count"`
	LoopTotal int    `json:"loop_total"`
}

type MinimapRecord struct {
	BlockHeights      []int      `json:"block_heights"`
	BuiltInBlock      []bool     `json:"built_in_block"`
	BlockStartAddress []uint64   `json:"block_start_address"`
	BlockLoopIndents  []int      `json:"block_loop_indents"`
	BlockFlags        [][]string `json:"block_flags"`
}

type DiagnosticRecord struct {
	Kind     string `json:"kind"`
	Function string `json:"function,omitempty"`
	Block    string `json:"block,omitempty"`
	Loop     string `json:"loop,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// ResultRecord is the layout of a whole program.
type ResultRecord struct {
	MemoryOrderBlocks []BlockRecord `json:"memory_order_blocks"`
	LoopOrderBlocks   []BlockRecord `json:"loop_order_blocks"`
	Minimap           struct {
		MemoryOrder MinimapRecord `json:"memory_order"`
		LoopOrder   MinimapRecord `json:"loop_order"`
	} `json:"minimap"`
	SourceFiles []string           `json:"source_files"`
	Diagnostics []DiagnosticRecord `json:"diagnostics,omitempty"`
}

// FunctionResultRecord is the layout of one function, written per line when
// following a growing dump.
type FunctionResultRecord struct {
	Name              string             `json:"name"`
	MemoryOrderBlocks []BlockRecord      `json:"memory_order_blocks"`
	LoopOrderBlocks   []BlockRecord      `json:"loop_order_blocks"`
	Diagnostics       []DiagnosticRecord `json:"diagnostics,omitempty"`
}
