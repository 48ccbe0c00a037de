package refschema

// Dump module names exposed by the reference oracle.
const (
	ModuleElement        = "Element"
	ModuleAtomicShell    = "AtomicShell"
	ModuleXRayTransition = "XRayTransition"
)

// ElementSchema describes the Element dump: static properties of one
// element selected by atomic number.
var ElementSchema = Schema{
	Module: ModuleElement,
	Columns: []Column{
		{Name: "Z", Type: TypeInt},
		{Name: "symbol", Type: TypeString},
		{Name: "name", Type: TypeString},
		{Name: "atomic_weight", Type: TypeDouble},
		{Name: "mass_in_kg", Type: TypeDouble},
		{Name: "ionization_energy", Type: TypeDouble, Nullable: true},
		{Name: "mean_ionization_potential", Type: TypeDouble},
	},
}

// AtomicShellSchema describes the AtomicShell dump: one row per queried
// shell of an element.
var AtomicShellSchema = Schema{
	Module: ModuleAtomicShell,
	Columns: []Column{
		{Name: "Z", Type: TypeInt},
		{Name: "shell_index", Type: TypeInt},
		{Name: "shell_name_siegbahn", Type: TypeString},
		{Name: "shell_name_iupac", Type: TypeString},
		{Name: "shell_name_atomic", Type: TypeString},
		{Name: "family", Type: TypeString},
		{Name: "principal_quantum_number", Type: TypeInt},
		{Name: "orbital_angular_momentum", Type: TypeInt},
		{Name: "total_angular_momentum", Type: TypeDouble},
		{Name: "capacity", Type: TypeInt},
		{Name: "exists", Type: TypeBool, Nullable: true},
		{Name: "ground_state_occupancy", Type: TypeInt, Nullable: true},
		{Name: "edge_energy_ev", Type: TypeDouble, Nullable: true},
		{Name: "energy_J", Type: TypeDouble, Nullable: true},
	},
}

// XRayTransitionSchema describes the XRayTransition dump. Several columns
// are nullable because not every (Z, transition) pair physically exists.
var XRayTransitionSchema = Schema{
	Module: ModuleXRayTransition,
	Columns: []Column{
		{Name: "Z", Type: TypeInt},
		{Name: "transition_index", Type: TypeInt},
		{Name: "transition_name", Type: TypeString},
		{Name: "source_shell", Type: TypeString},
		{Name: "destination_shell", Type: TypeString},
		{Name: "family", Type: TypeString},
		{Name: "is_well_known", Type: TypeBool},
		{Name: "exists", Type: TypeBool, Nullable: true},
		{Name: "energy", Type: TypeDouble, Nullable: true},
		{Name: "edge_energy_eV", Type: TypeDouble, Nullable: true},
		{Name: "weight_default", Type: TypeDouble, Nullable: true},
		{Name: "weight_family", Type: TypeDouble, Nullable: true},
		{Name: "weight_destination", Type: TypeDouble, Nullable: true},
		{Name: "weight_klm", Type: TypeDouble, Nullable: true},
	},
}

// Default returns a registry preloaded with every dump module the oracle
// ships.
func Default() *Registry {
	return NewRegistry(ElementSchema, AtomicShellSchema, XRayTransitionSchema)
}
